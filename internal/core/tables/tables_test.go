package tables_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/olistclean/internal/core"
	_ "github.com/JonMunkholm/olistclean/internal/core/tables"
	"github.com/JonMunkholm/olistclean/internal/sink"
)

const translationSource = "product_category_name_translation"

var rawTables = map[string]string{
	"olist_geolocation_dataset": "geolocation_zip_code_prefix,geolocation_lat,geolocation_lng,geolocation_city,geolocation_state\n" +
		"1001,-23.5,-46.6,Sao Paulo,SP\n" +
		"01001,-23.50,-46.6,sao paulo,sp\n" +
		"1001,-23.6,-46.6,sao paulo,SP\n" +
		"13023-100,-22.9,-47.06,Campinas,SP\n",

	"olist_products_dataset": "product_id,product_category_name,product_name_lenght,product_description_lenght,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm\n" +
		"P1, Beleza_Saude ,40,287,1,225,16,10,14\n" +
		"P2,,,,,,,,\n" +
		"P3,brinquedos,abc,12.0,2,300,20,5,5\n",

	"olist_sellers_dataset": "seller_id,seller_zip_code_prefix,seller_city,seller_state\n" +
		"S1,13023,Campinas,SP\n",

	"olist_customers_dataset": "customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n" +
		"C1,U1,1151,Franca,SP\n" +
		"C2,U2,99999,Rio de Janeiro,RJ\n" +
		"C1,U1b,1151,Franca,SP\n",

	"olist_orders_dataset": "order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\n" +
		"O1,C1,Delivered,2017-10-02 10:56:33,2017-10-02 11:07:15,2017-10-04 19:55:00,not a date,2017-10-18 00:00:00\n" +
		"O2,C9,delivered,2017-10-02 10:56:33,,,,\n",

	"olist_order_items_dataset": "order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value\n" +
		"O1,1,P1,S1,2017-10-06 11:07:15,58.90,13.29\n" +
		"O2,1,P1,S1,2017-10-06 11:07:15,10,1\n" +
		"O1,2,P9,S1,2017-10-06 11:07:15,10,1\n" +
		"O1,3,P1,S9,2017-10-06 11:07:15,10,1\n" +
		"O1,4,P2,S1,2017-10-06 11:07:15,19.999,\n",

	"olist_order_payments_dataset": "order_id,payment_sequential,payment_type,payment_installments,payment_value\n" +
		"O1,1,Credit_Card,8,99.33\n" +
		"O2,1,boleto,1,65.71\n",

	"olist_order_reviews_dataset": "review_id,order_id,review_score,review_comment_title,review_comment_message,review_creation_date,review_answer_timestamp\n" +
		"R1,O1,5,,\"Otimo produto\nchegou rapido\",2018-01-18 00:00:00,2018-01-18 21:46:59\n" +
		"R1,O1,5,,\"Otimo produto\nchegou rapido\",2018-01-18 00:00:00,2018-01-18 21:46:59\n" +
		"R2,O2,1,Ruim,Nao chegou,2018-01-18 00:00:00,\n",

	translationSource: "product_category_name,product_category_name_english\n" +
		"beleza_saude,health_beauty\n" +
		"beleza_saude,beauty_other\n",
}

func newSource(skip ...string) *core.MemorySource {
	src := core.NewMemorySource()
	for name, content := range rawTables {
		skipped := false
		for _, s := range skip {
			skipped = skipped || s == name
		}
		if !skipped {
			src.Add(name, content)
		}
	}
	return src
}

func run(t *testing.T, src core.Source, s core.Sink) *core.RunReport {
	t.Helper()
	report, err := core.NewPipeline(src, s, core.PipelineOptions{
		TranslationSource: translationSource,
	}).Run(context.Background())
	require.NoError(t, err)
	return report
}

func TestTables_Registered(t *testing.T) {
	var keys []string
	for _, def := range core.All() {
		keys = append(keys, def.Info.Key)
	}
	assert.Equal(t, []string{
		"geolocation", "products", "sellers",
		"customers",
		"orders",
		"order_items", "order_payments", "order_reviews",
	}, keys)

	for _, def := range core.All() {
		assert.NotEmpty(t, def.Info.Columns, def.Info.Key)
		assert.NotEmpty(t, def.Info.Output, def.Info.Key)
	}
}

func TestTables_EndToEnd(t *testing.T) {
	mem := core.NewMemorySink()
	report := run(t, newSource(), mem)

	assert.Equal(t, core.RunCompleted, report.Status)
	require.Len(t, report.Stages, 8)
	for _, st := range report.Stages {
		assert.Equal(t, core.StageDone, st.Status, st.Table)
	}
	assert.Equal(t, 1, report.Translations, "first mapping wins, duplicates ignored")

	t.Run("customers are deduplicated but never zip-filtered", func(t *testing.T) {
		assert.Equal(t, []string{"C1", "C2"}, mem.Column("customer", "customer_id"))
		assert.Equal(t, []string{"U1", "U2"}, mem.Column("customer", "customer_unique_id"))
		assert.Equal(t, []string{"01151", "99999"}, mem.Column("customer", "customer_zip_code_prefix"))
		assert.Equal(t, []string{"franca", "rio de janeiro"}, mem.Column("customer", "customer_city"))
	})

	t.Run("orders reference known customers", func(t *testing.T) {
		assert.Equal(t, []string{"O1"}, mem.Column("order", "order_id"))
		assert.Equal(t, []string{"delivered"}, mem.Column("order", "order_status"))
		assert.Equal(t, []string{"2017-10-02 10:56:33"}, mem.Column("order", "order_purchase_timestamp"))
		assert.Equal(t, []string{""}, mem.Column("order", "order_delivered_customer_date"), "bad timestamp becomes null")

		st, _ := report.Stage("orders")
		assert.Equal(t, 1, st.Rejected)
	})

	t.Run("items need order product and seller", func(t *testing.T) {
		assert.Equal(t, []string{"1", "4"}, mem.Column("order_item", "order_item_id"))
		assert.Equal(t, []string{"58.90", "20.00"}, mem.Column("order_item", "price"))
		assert.Equal(t, []string{"13.29", ""}, mem.Column("order_item", "freight_value"))

		st, _ := report.Stage("order_items")
		assert.Equal(t, 5, st.Loaded)
		assert.Equal(t, 3, st.Rejected)
	})

	t.Run("payments", func(t *testing.T) {
		assert.Equal(t, []string{"O1"}, mem.Column("order_payment", "order_id"))
		assert.Equal(t, []string{"credit_card"}, mem.Column("order_payment", "payment_type"))
		assert.Equal(t, []string{"99.33"}, mem.Column("order_payment", "payment_value"))
	})

	t.Run("reviews are filtered then deduplicated", func(t *testing.T) {
		assert.Equal(t, []string{"R1"}, mem.Column("order_review", "review_id"))
		assert.Equal(t, []string{"Otimo produto chegou rapido"}, mem.Column("order_review", "review_comment_message"))
		assert.Equal(t, []string{""}, mem.Column("order_review", "review_comment_title"))

		st, _ := report.Stage("order_reviews")
		assert.Equal(t, 1, st.Rejected)
		assert.Equal(t, 1, st.Duplicates)
	})

	t.Run("geolocation dedups exact points", func(t *testing.T) {
		assert.Equal(t, []string{"01001", "01001", "13023"}, mem.Column("geolocation", "geolocation_zip_code_prefix"))
		assert.Equal(t, []string{"-23.5", "-23.6", "-22.9"}, mem.Column("geolocation", "geolocation_lat"))
	})

	t.Run("products are translated", func(t *testing.T) {
		assert.Equal(t, []string{"health_beauty", "", "brinquedos"}, mem.Column("product", "product_category_name"))
		assert.Equal(t, []string{"40", "", ""}, mem.Column("product", "product_name_lenght"))
		assert.Equal(t, []string{"287", "", "12"}, mem.Column("product", "product_description_lenght"))
	})

	assert.Equal(t, map[core.Kind]int{
		core.KindZip:      2,
		core.KindProduct:  3,
		core.KindSeller:   1,
		core.KindCustomer: 2,
		core.KindOrder:    1,
	}, report.Registry)
}

func TestTables_ZipWidth(t *testing.T) {
	mem := core.NewMemorySink()
	run(t, newSource(), mem)

	zipColumns := map[string]string{
		"geolocation": "geolocation_zip_code_prefix",
		"seller":      "seller_zip_code_prefix",
		"customer":    "customer_zip_code_prefix",
	}
	for table, column := range zipColumns {
		for _, zip := range mem.Column(table, column) {
			if zip != "" {
				assert.Len(t, zip, core.ZipWidth, "%s.%s", table, column)
			}
		}
	}
}

func TestTables_GeolocationKeepsDistinctMalformedPoints(t *testing.T) {
	src := core.NewMemorySource().Add("olist_geolocation_dataset",
		"geolocation_zip_code_prefix,geolocation_lat,geolocation_lng,geolocation_city,geolocation_state\n"+
			"1001,abc,-46.6,a,SP\n"+
			"1001,xyz,-46.6,b,SP\n"+
			"1001, abc ,-46.6,c,SP\n"+
			"1001,-23.50,-46.6,d,SP\n"+
			"01001,-23.5,-46.6,e,SP\n")
	mem := core.NewMemorySink()
	report := run(t, src, mem)

	assert.Equal(t, []string{"a", "b", "d"}, mem.Column("geolocation", "geolocation_city"))
	assert.Equal(t, []string{"", "", "-23.5"}, mem.Column("geolocation", "geolocation_lat"))

	st, _ := report.Stage("geolocation")
	assert.Equal(t, 2, st.Duplicates)
}

func TestTables_NoDanglingReferences(t *testing.T) {
	mem := core.NewMemorySink()
	run(t, newSource(), mem)

	set := func(table, column string) map[string]bool {
		out := make(map[string]bool)
		for _, v := range mem.Column(table, column) {
			out[v] = true
		}
		return out
	}

	orders := set("order", "order_id")
	products := set("product", "product_id")
	sellers := set("seller", "seller_id")
	customers := set("customer", "customer_id")

	for _, id := range mem.Column("order", "customer_id") {
		assert.True(t, customers[id], "order customer %s", id)
	}
	for _, id := range mem.Column("order_item", "order_id") {
		assert.True(t, orders[id], "item order %s", id)
	}
	for _, id := range mem.Column("order_item", "product_id") {
		assert.True(t, products[id], "item product %s", id)
	}
	for _, id := range mem.Column("order_item", "seller_id") {
		assert.True(t, sellers[id], "item seller %s", id)
	}
	for _, table := range []string{"order_payment", "order_review"} {
		for _, id := range mem.Column(table, "order_id") {
			assert.True(t, orders[id], "%s order %s", table, id)
		}
	}
}

func TestTables_MissingMasterDropsDependents(t *testing.T) {
	mem := core.NewMemorySink()
	report := run(t, newSource("olist_sellers_dataset"), mem)

	sellers, _ := report.Stage("sellers")
	assert.Equal(t, core.StageSkipped, sellers.Status)

	items, ok := mem.Table("order_item")
	require.True(t, ok)
	assert.Empty(t, items.Rows, "no seller is known, so no item survives")

	// Orders and payments do not depend on sellers.
	assert.Equal(t, []string{"O1"}, mem.Column("order_payment", "order_id"))
}

func TestTables_MissingTranslationKeepsCategories(t *testing.T) {
	mem := core.NewMemorySink()
	report := run(t, newSource(translationSource), mem)

	assert.Zero(t, report.Translations)
	assert.Equal(t, []string{"beleza_saude", "", "brinquedos"}, mem.Column("product", "product_category_name"))
}

func TestTables_RegistryOnlyGrows(t *testing.T) {
	reg := core.NewIDRegistry()
	_, err := core.NewPipeline(newSource(), core.NewMemorySink(), core.PipelineOptions{}).
		RunWithRegistry(context.Background(), reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"O1"}, reg.Snapshot(core.KindOrder))
	assert.ElementsMatch(t, []string{"C1", "C2"}, reg.Snapshot(core.KindCustomer))
	for _, kind := range []core.Kind{core.KindZip, core.KindProduct, core.KindSeller, core.KindCustomer, core.KindOrder} {
		assert.True(t, reg.Sealed(kind), string(kind))
	}
}

func TestTables_Idempotent(t *testing.T) {
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	run(t, newSource(), sink.NewFileSink(dirA, sink.CompressionNone))
	run(t, newSource(), sink.NewFileSink(dirB, sink.CompressionNone))

	entries, err := os.ReadDir(dirA)
	require.NoError(t, err)
	require.Len(t, entries, 8)

	for _, e := range entries {
		a, err := os.ReadFile(filepath.Join(dirA, e.Name()))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, e.Name()))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "%s differs between runs", e.Name())
	}

	order, err := os.ReadFile(filepath.Join(dirA, "order.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,"+
			"order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\n"+
			"O1,C1,delivered,2017-10-02 10:56:33,2017-10-02 11:07:15,2017-10-04 19:55:00,,2017-10-18 00:00:00\n",
		string(order))
}
