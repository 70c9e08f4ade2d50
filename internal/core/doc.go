// Package core provides the cleaning pipeline for the Olist e-commerce
// exports, independent of any transport. The CLI, the HTTP server and tests
// all drive it through [Pipeline] or [Service].
//
// # Architecture
//
//   - Table definitions: each entity registers a [Stage] via [Register]:
//     how to parse a raw row into a typed record, how to clean and filter
//     the records, which identifiers they make valid, and how to render
//     them for output.
//   - Source and Sink: raw tables are loaded through a [Source] (a CSV
//     directory or memory); cleaned tables go to a [Sink].
//   - IDRegistry: the per-run set of valid identifiers by [Kind]. A kind
//     is sealed once its producing stage ran, even if that stage was
//     skipped, so dependents never see a partially built set.
//   - Service: admits one run at a time and keeps recent [RunReport]s.
//
// # Phases
//
// Stages run in four phases, strictly in order:
//
//  1. Masters: geolocation, products, sellers
//  2. Customers
//  3. Orders, filtered against customers
//  4. Order items, payments and reviews, filtered against orders (and
//     products and sellers for items)
//
// A row referencing an unknown identifier is dropped and counted as
// rejected. A malformed field value becomes NULL and never drops the row.
//
// # Registering a table
//
//	core.Register(core.Stage[Seller]{
//	    Info: core.TableInfo{
//	        Key: "sellers", Phase: core.PhaseMasters,
//	        Source: "olist_sellers_dataset", Output: "seller",
//	        Columns: []core.Column{{Name: "seller_id", Type: core.FieldText}},
//	        Registers: []core.Kind{core.KindSeller},
//	    },
//	    Parse:    parseSeller,
//	    Register: registerSellerIDs,
//	    Values:   sellerValues,
//	}.Definition())
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with support codes
// by [MapError]; see error_messages.go for the code table.
package core
