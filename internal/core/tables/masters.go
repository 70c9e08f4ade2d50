package tables

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/olistclean/internal/core"
)

func init() {
	registerGeolocation()
	registerProducts()
	registerSellers()
}

// Geolocation is one cleaned row of olist_geolocation_dataset.
type Geolocation struct {
	ZipCodePrefix pgtype.Text
	Lat           pgtype.Float8
	Lng           pgtype.Float8
	City          pgtype.Text
	State         pgtype.Text

	// Raw coordinate cells, used as the dedup key when parsing yields NULL.
	rawLat, rawLng string
}

func registerGeolocation() {
	core.Register(core.Stage[Geolocation]{
		Info: core.TableInfo{
			Key:    "geolocation",
			Label:  "Geolocation",
			Phase:  core.PhaseMasters,
			Order:  1,
			Source: "olist_geolocation_dataset",
			Output: "geolocation",
			Columns: []core.Column{
				{Name: "geolocation_zip_code_prefix", Type: core.FieldText},
				{Name: "geolocation_lat", Type: core.FieldFloat},
				{Name: "geolocation_lng", Type: core.FieldFloat},
				{Name: "geolocation_city", Type: core.FieldText},
				{Name: "geolocation_state", Type: core.FieldText},
			},
			UniqueKey: []string{"geolocation_zip_code_prefix", "geolocation_lat", "geolocation_lng"},
			Registers: []core.Kind{core.KindZip},
		},
		Parse: func(r core.Row) Geolocation {
			return Geolocation{
				ZipCodePrefix: core.NormalizeZip(r.Get("geolocation_zip_code_prefix")),
				Lat:           core.ToPgFloat8(r.Get("geolocation_lat")),
				Lng:           core.ToPgFloat8(r.Get("geolocation_lng")),
				City:          core.NormalizeText(r.Get("geolocation_city")),
				State:         core.NormalizeText(r.Get("geolocation_state")),
				rawLat:        strings.TrimSpace(r.Get("geolocation_lat")),
				rawLng:        strings.TrimSpace(r.Get("geolocation_lng")),
			}
		},
		Clean: func(rows []Geolocation, rc *core.RunContext) ([]Geolocation, core.CleanStats) {
			kept, dups := core.DedupBy(rows, geolocationKey)
			return kept, core.CleanStats{Duplicates: dups}
		},
		Register: func(rows []Geolocation, reg *core.IDRegistry) error {
			return core.RecordKeys(reg, core.KindZip, rows, func(g Geolocation) string {
				return g.ZipCodePrefix.String
			})
		},
		Values: func(g Geolocation) []any {
			return []any{g.ZipCodePrefix, g.Lat, g.Lng, g.City, g.State}
		},
	}.Definition())
}

// geolocationKey identifies the exact (zip, lat, lng) triple. Coordinates
// compare by value, so "-23.50" and "-23.5" are the same point. A coordinate
// that did not parse compares by its raw text instead, so distinct malformed
// cells are not merged into one NULL point.
func geolocationKey(g Geolocation) string {
	return core.FormatValue(g.ZipCodePrefix) + "|" + coordKey(g.Lat, g.rawLat) + "|" + coordKey(g.Lng, g.rawLng)
}

func coordKey(v pgtype.Float8, raw string) string {
	if v.Valid {
		return core.FormatValue(v)
	}
	return "?" + raw
}

// Product is one cleaned row of olist_products_dataset.
type Product struct {
	ProductID         string
	CategoryName      pgtype.Text
	NameLength        pgtype.Int4
	DescriptionLength pgtype.Int4
	PhotosQty         pgtype.Int4
	WeightG           pgtype.Int4
	LengthCm          pgtype.Int4
	HeightCm          pgtype.Int4
	WidthCm           pgtype.Int4
}

func registerProducts() {
	core.Register(core.Stage[Product]{
		Info: core.TableInfo{
			Key:    "products",
			Label:  "Products",
			Phase:  core.PhaseMasters,
			Order:  2,
			Source: "olist_products_dataset",
			Output: "product",
			// The "lenght" spelling is the upstream column name.
			Columns: []core.Column{
				{Name: "product_id", Type: core.FieldText},
				{Name: "product_category_name", Type: core.FieldText},
				{Name: "product_name_lenght", Type: core.FieldInteger},
				{Name: "product_description_lenght", Type: core.FieldInteger},
				{Name: "product_photos_qty", Type: core.FieldInteger},
				{Name: "product_weight_g", Type: core.FieldInteger},
				{Name: "product_length_cm", Type: core.FieldInteger},
				{Name: "product_height_cm", Type: core.FieldInteger},
				{Name: "product_width_cm", Type: core.FieldInteger},
			},
			Registers: []core.Kind{core.KindProduct},
		},
		Parse: func(r core.Row) Product {
			return Product{
				ProductID:         r.ID("product_id"),
				CategoryName:      core.NormalizeText(r.Get("product_category_name")),
				NameLength:        core.ToPgInt4(r.Get("product_name_lenght")),
				DescriptionLength: core.ToPgInt4(r.Get("product_description_lenght")),
				PhotosQty:         core.ToPgInt4(r.Get("product_photos_qty")),
				WeightG:           core.ToPgInt4(r.Get("product_weight_g")),
				LengthCm:          core.ToPgInt4(r.Get("product_length_cm")),
				HeightCm:          core.ToPgInt4(r.Get("product_height_cm")),
				WidthCm:           core.ToPgInt4(r.Get("product_width_cm")),
			}
		},
		Clean: func(rows []Product, rc *core.RunContext) ([]Product, core.CleanStats) {
			for i := range rows {
				rows[i].CategoryName = rc.Translation.Lookup(rows[i].CategoryName)
			}
			return rows, core.CleanStats{}
		},
		Register: func(rows []Product, reg *core.IDRegistry) error {
			return core.RecordKeys(reg, core.KindProduct, rows, func(p Product) string { return p.ProductID })
		},
		Values: func(p Product) []any {
			return []any{
				p.ProductID, p.CategoryName, p.NameLength, p.DescriptionLength,
				p.PhotosQty, p.WeightG, p.LengthCm, p.HeightCm, p.WidthCm,
			}
		},
	}.Definition())
}

// Seller is one cleaned row of olist_sellers_dataset.
type Seller struct {
	SellerID      string
	ZipCodePrefix pgtype.Text
	City          pgtype.Text
	State         pgtype.Text
}

func registerSellers() {
	core.Register(core.Stage[Seller]{
		Info: core.TableInfo{
			Key:    "sellers",
			Label:  "Sellers",
			Phase:  core.PhaseMasters,
			Order:  3,
			Source: "olist_sellers_dataset",
			Output: "seller",
			Columns: []core.Column{
				{Name: "seller_id", Type: core.FieldText},
				{Name: "seller_zip_code_prefix", Type: core.FieldText},
				{Name: "seller_city", Type: core.FieldText},
				{Name: "seller_state", Type: core.FieldText},
			},
			Registers: []core.Kind{core.KindSeller},
		},
		Parse: func(r core.Row) Seller {
			return Seller{
				SellerID:      r.ID("seller_id"),
				ZipCodePrefix: core.NormalizeZip(r.Get("seller_zip_code_prefix")),
				City:          core.NormalizeText(r.Get("seller_city")),
				State:         core.NormalizeText(r.Get("seller_state")),
			}
		},
		Register: func(rows []Seller, reg *core.IDRegistry) error {
			return core.RecordKeys(reg, core.KindSeller, rows, func(s Seller) string { return s.SellerID })
		},
		Values: func(s Seller) []any {
			return []any{s.SellerID, s.ZipCodePrefix, s.City, s.State}
		},
	}.Definition())
}
