package tables

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/olistclean/internal/core"
)

func init() {
	registerOrders()
}

// Order is one cleaned row of olist_orders_dataset.
type Order struct {
	OrderID               string
	CustomerID            string
	Status                pgtype.Text
	PurchaseTimestamp     pgtype.Timestamp
	ApprovedAt            pgtype.Timestamp
	DeliveredCarrierDate  pgtype.Timestamp
	DeliveredCustomerDate pgtype.Timestamp
	EstimatedDeliveryDate pgtype.Timestamp
}

// Every lifecycle timestamp is parsed independently; an unparseable value
// becomes NULL and never drops the order.
func registerOrders() {
	core.Register(core.Stage[Order]{
		Info: core.TableInfo{
			Key:    "orders",
			Label:  "Orders",
			Phase:  core.PhaseOrders,
			Order:  1,
			Source: "olist_orders_dataset",
			Output: "order",
			Columns: []core.Column{
				{Name: "order_id", Type: core.FieldText},
				{Name: "customer_id", Type: core.FieldText},
				{Name: "order_status", Type: core.FieldText},
				{Name: "order_purchase_timestamp", Type: core.FieldTimestamp},
				{Name: "order_approved_at", Type: core.FieldTimestamp},
				{Name: "order_delivered_carrier_date", Type: core.FieldTimestamp},
				{Name: "order_delivered_customer_date", Type: core.FieldTimestamp},
				{Name: "order_estimated_delivery_date", Type: core.FieldTimestamp},
			},
			Registers:  []core.Kind{core.KindOrder},
			References: []core.Kind{core.KindCustomer},
		},
		Parse: func(r core.Row) Order {
			return Order{
				OrderID:               r.ID("order_id"),
				CustomerID:            r.ID("customer_id"),
				Status:                core.NormalizeText(r.Get("order_status")),
				PurchaseTimestamp:     core.ToPgTimestamp(r.Get("order_purchase_timestamp")),
				ApprovedAt:            core.ToPgTimestamp(r.Get("order_approved_at")),
				DeliveredCarrierDate:  core.ToPgTimestamp(r.Get("order_delivered_carrier_date")),
				DeliveredCustomerDate: core.ToPgTimestamp(r.Get("order_delivered_customer_date")),
				EstimatedDeliveryDate: core.ToPgTimestamp(r.Get("order_estimated_delivery_date")),
			}
		},
		Clean: func(rows []Order, rc *core.RunContext) ([]Order, core.CleanStats) {
			kept, rejected := core.FilterByValid(rc.Registry, rows, core.KindCustomer, func(o Order) string {
				return o.CustomerID
			})
			return kept, core.CleanStats{Rejected: rejected}
		},
		Register: func(rows []Order, reg *core.IDRegistry) error {
			return core.RecordKeys(reg, core.KindOrder, rows, func(o Order) string { return o.OrderID })
		},
		Values: func(o Order) []any {
			return []any{
				o.OrderID, o.CustomerID, o.Status,
				o.PurchaseTimestamp, o.ApprovedAt, o.DeliveredCarrierDate,
				o.DeliveredCustomerDate, o.EstimatedDeliveryDate,
			}
		},
	}.Definition())
}
