package tables

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/olistclean/internal/core"
)

func init() {
	registerCustomers()
}

// Customer is one cleaned row of olist_customers_dataset.
type Customer struct {
	CustomerID       string
	CustomerUniqueID string
	ZipCodePrefix    pgtype.Text
	City             pgtype.Text
	State            pgtype.Text
}

// Customers are deliberately not filtered against the zip registry: the
// geolocation dataset is a sample and would drop legitimate customers.
func registerCustomers() {
	core.Register(core.Stage[Customer]{
		Info: core.TableInfo{
			Key:    "customers",
			Label:  "Customers",
			Phase:  core.PhaseCustomers,
			Order:  1,
			Source: "olist_customers_dataset",
			Output: "customer",
			Columns: []core.Column{
				{Name: "customer_id", Type: core.FieldText},
				{Name: "customer_unique_id", Type: core.FieldText},
				{Name: "customer_zip_code_prefix", Type: core.FieldText},
				{Name: "customer_city", Type: core.FieldText},
				{Name: "customer_state", Type: core.FieldText},
			},
			UniqueKey: []string{"customer_id"},
			Registers: []core.Kind{core.KindCustomer},
		},
		Parse: func(r core.Row) Customer {
			return Customer{
				CustomerID:       r.ID("customer_id"),
				CustomerUniqueID: r.ID("customer_unique_id"),
				ZipCodePrefix:    core.NormalizeZip(r.Get("customer_zip_code_prefix")),
				City:             core.NormalizeText(r.Get("customer_city")),
				State:            core.NormalizeText(r.Get("customer_state")),
			}
		},
		Clean: func(rows []Customer, rc *core.RunContext) ([]Customer, core.CleanStats) {
			kept, dups := core.DedupBy(rows, func(c Customer) string { return c.CustomerID })
			return kept, core.CleanStats{Duplicates: dups}
		},
		Register: func(rows []Customer, reg *core.IDRegistry) error {
			return core.RecordKeys(reg, core.KindCustomer, rows, func(c Customer) string { return c.CustomerID })
		},
		Values: func(c Customer) []any {
			return []any{c.CustomerID, c.CustomerUniqueID, c.ZipCodePrefix, c.City, c.State}
		},
	}.Definition())
}
