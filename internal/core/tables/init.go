// Package tables registers the Olist table processors with the core registry.
// Import this package to ensure all tables are registered.
//
// Tables by phase:
//
//	1  geolocation, products, sellers   (masters, no dependencies)
//	2  customers                        (never filtered against zip)
//	3  orders                           (filtered against customer)
//	4  order items, payments, reviews   (filtered against order, and
//	                                     product and seller for items)
package tables

// This file exists to provide a single import point.
// Each table file uses init() to register its tables.
