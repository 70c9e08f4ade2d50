package tables

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/olistclean/internal/core"
)

func init() {
	registerOrderItems()
	registerPayments()
	registerReviews()
}

// OrderItem is one cleaned row of olist_order_items_dataset.
type OrderItem struct {
	OrderID           string
	OrderItemID       pgtype.Int4
	ProductID         string
	SellerID          string
	ShippingLimitDate pgtype.Timestamp
	Price             pgtype.Numeric
	FreightValue      pgtype.Numeric
}

// itemRefs is conjunctive: an item survives only when its order, product
// and seller are all known.
var itemRefs = []core.Ref[OrderItem]{
	{Kind: core.KindOrder, Key: func(i OrderItem) string { return i.OrderID }},
	{Kind: core.KindProduct, Key: func(i OrderItem) string { return i.ProductID }},
	{Kind: core.KindSeller, Key: func(i OrderItem) string { return i.SellerID }},
}

func registerOrderItems() {
	core.Register(core.Stage[OrderItem]{
		Info: core.TableInfo{
			Key:    "order_items",
			Label:  "Order Items",
			Phase:  core.PhaseDependents,
			Order:  1,
			Source: "olist_order_items_dataset",
			Output: "order_item",
			Columns: []core.Column{
				{Name: "order_id", Type: core.FieldText},
				{Name: "order_item_id", Type: core.FieldInteger},
				{Name: "product_id", Type: core.FieldText},
				{Name: "seller_id", Type: core.FieldText},
				{Name: "shipping_limit_date", Type: core.FieldTimestamp},
				{Name: "price", Type: core.FieldNumeric},
				{Name: "freight_value", Type: core.FieldNumeric},
			},
			References: []core.Kind{core.KindOrder, core.KindProduct, core.KindSeller},
		},
		Parse: func(r core.Row) OrderItem {
			return OrderItem{
				OrderID:           r.ID("order_id"),
				OrderItemID:       core.ToPgInt4(r.Get("order_item_id")),
				ProductID:         r.ID("product_id"),
				SellerID:          r.ID("seller_id"),
				ShippingLimitDate: core.ToPgTimestamp(r.Get("shipping_limit_date")),
				Price:             core.ToMoney(r.Get("price")),
				FreightValue:      core.ToMoney(r.Get("freight_value")),
			}
		},
		Clean: func(rows []OrderItem, rc *core.RunContext) ([]OrderItem, core.CleanStats) {
			kept, rejected := core.FilterByAll(rc.Registry, rows, itemRefs...)
			return kept, core.CleanStats{Rejected: rejected}
		},
		Values: func(i OrderItem) []any {
			return []any{
				i.OrderID, i.OrderItemID, i.ProductID, i.SellerID,
				i.ShippingLimitDate, i.Price, i.FreightValue,
			}
		},
	}.Definition())
}

// Payment is one cleaned row of olist_order_payments_dataset.
type Payment struct {
	OrderID             string
	PaymentSequential   pgtype.Int4
	PaymentType         pgtype.Text
	PaymentInstallments pgtype.Int4
	PaymentValue        pgtype.Numeric
}

func registerPayments() {
	core.Register(core.Stage[Payment]{
		Info: core.TableInfo{
			Key:    "order_payments",
			Label:  "Order Payments",
			Phase:  core.PhaseDependents,
			Order:  2,
			Source: "olist_order_payments_dataset",
			Output: "order_payment",
			Columns: []core.Column{
				{Name: "order_id", Type: core.FieldText},
				{Name: "payment_sequential", Type: core.FieldInteger},
				{Name: "payment_type", Type: core.FieldText},
				{Name: "payment_installments", Type: core.FieldInteger},
				{Name: "payment_value", Type: core.FieldNumeric},
			},
			References: []core.Kind{core.KindOrder},
		},
		Parse: func(r core.Row) Payment {
			return Payment{
				OrderID:             r.ID("order_id"),
				PaymentSequential:   core.ToPgInt4(r.Get("payment_sequential")),
				PaymentType:         core.NormalizeText(r.Get("payment_type")),
				PaymentInstallments: core.ToPgInt4(r.Get("payment_installments")),
				PaymentValue:        core.ToMoney(r.Get("payment_value")),
			}
		},
		Clean: func(rows []Payment, rc *core.RunContext) ([]Payment, core.CleanStats) {
			kept, rejected := core.FilterByValid(rc.Registry, rows, core.KindOrder, func(p Payment) string {
				return p.OrderID
			})
			return kept, core.CleanStats{Rejected: rejected}
		},
		Values: func(p Payment) []any {
			return []any{p.OrderID, p.PaymentSequential, p.PaymentType, p.PaymentInstallments, p.PaymentValue}
		},
	}.Definition())
}

// Review is one cleaned row of olist_order_reviews_dataset.
type Review struct {
	ReviewID        string
	OrderID         string
	Score           pgtype.Int4
	CommentTitle    pgtype.Text
	CommentMessage  pgtype.Text
	CreationDate    pgtype.Timestamp
	AnswerTimestamp pgtype.Timestamp
}

// The raw review export contains exact duplicate rows, so reviews are
// deduplicated on review_id after the order filter.
func registerReviews() {
	core.Register(core.Stage[Review]{
		Info: core.TableInfo{
			Key:    "order_reviews",
			Label:  "Order Reviews",
			Phase:  core.PhaseDependents,
			Order:  3,
			Source: "olist_order_reviews_dataset",
			Output: "order_review",
			Columns: []core.Column{
				{Name: "review_id", Type: core.FieldText},
				{Name: "order_id", Type: core.FieldText},
				{Name: "review_score", Type: core.FieldInteger},
				{Name: "review_comment_title", Type: core.FieldText},
				{Name: "review_comment_message", Type: core.FieldText},
				{Name: "review_creation_date", Type: core.FieldTimestamp},
				{Name: "review_answer_timestamp", Type: core.FieldTimestamp},
			},
			UniqueKey:  []string{"review_id"},
			References: []core.Kind{core.KindOrder},
		},
		Parse: func(r core.Row) Review {
			return Review{
				ReviewID:        r.ID("review_id"),
				OrderID:         r.ID("order_id"),
				Score:           core.ToPgInt4(r.Get("review_score")),
				CommentTitle:    core.FlattenLineBreaks(r.Get("review_comment_title")),
				CommentMessage:  core.FlattenLineBreaks(r.Get("review_comment_message")),
				CreationDate:    core.ToPgTimestamp(r.Get("review_creation_date")),
				AnswerTimestamp: core.ToPgTimestamp(r.Get("review_answer_timestamp")),
			}
		},
		Clean: func(rows []Review, rc *core.RunContext) ([]Review, core.CleanStats) {
			kept, rejected := core.FilterByValid(rc.Registry, rows, core.KindOrder, func(r Review) string {
				return r.OrderID
			})
			kept, dups := core.DedupBy(kept, func(r Review) string { return r.ReviewID })
			return kept, core.CleanStats{Rejected: rejected, Duplicates: dups}
		},
		Values: func(r Review) []any {
			return []any{
				r.ReviewID, r.OrderID, r.Score, r.CommentTitle,
				r.CommentMessage, r.CreationDate, r.AnswerTimestamp,
			}
		},
	}.Definition())
}
