package core

// convert.go provides the field normalizers that turn raw CSV cells into
// typed record fields, plus the formatter used when writing them back out.
//
// These functions handle the messy reality of exported marketplace data:
//   - Zip prefixes that lost their leading zeros or carry a suffix ("01310-100")
//   - Monetary values with more than two fractional digits
//   - Integer counts exported as floats ("3.0")
//   - Several timestamp layouts in the same column
//   - Free text with embedded line breaks
//
// All normalizers return pgtype values with Valid=false for empty/invalid
// input. Malformed values never fail the row; they become NULL.

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ZipWidth is the fixed width of a normalized zip code prefix.
const ZipWidth = 5

// MoneyPlaces is the number of fractional digits kept for monetary values.
const MoneyPlaces = 2

// MoneyPrecision is the total number of digits a monetary value may carry.
// Larger magnitudes do not fit the numeric(14,2) output column.
const MoneyPrecision = 14

// TimestampLayout is the layout timestamps are written in.
const TimestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order. Fractional seconds are accepted by
// time.Parse after the seconds field even when the layout omits them.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// maxExponent bounds the decimal exponent accepted by ToPgNumeric.
const maxExponent = 1000

var bigTen = big.NewInt(10)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// NormalizeText trims and lower-cases s. Blank input stays NULL.
func NormalizeText(s string) pgtype.Text {
	t := ToPgText(s)
	if t.Valid {
		t.String = strings.ToLower(t.String)
	}
	return t
}

// NormalizeZip strips every non-digit, keeps the first ZipWidth digits and
// left-pads with zeros: "1310" -> "01310", "01310-100" -> "01310".
// Input without any digit stays NULL.
func NormalizeZip(s string) pgtype.Text {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return pgtype.Text{Valid: false}
	}
	if len(digits) > ZipWidth {
		digits = digits[:ZipWidth]
	}
	return pgtype.Text{String: strings.Repeat("0", ZipWidth-len(digits)) + digits, Valid: true}
}

// FlattenLineBreaks replaces every embedded line break ("\r\n", "\n" or "\r")
// with a single space, so the value stays on one row when written as CSV.
func FlattenLineBreaks(s string) pgtype.Text {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return ToPgText(s)
}

// ToPgNumeric converts a string to pgtype.Numeric.
// Accepts integers, decimals and scientific notation; anything else is NULL.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	var exp int64
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return pgtype.Numeric{Valid: false}
		}
		exp = e
		s = s[:i]
	}

	if i := strings.IndexByte(s, '.'); i >= 0 {
		exp -= int64(len(s) - i - 1)
		s = s[:i] + s[i+1:]
	}
	if exp < -maxExponent || exp > maxExponent {
		return pgtype.Numeric{Valid: false}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return pgtype.Numeric{Valid: false}
	}
	if neg {
		n.Neg(n)
	}
	return pgtype.Numeric{Int: n, Exp: int32(exp), Valid: true}
}

// ToMoney parses s as a decimal rounded to MoneyPlaces fractional digits:
// "19.999" -> 20.00, "10" -> 10.00. Values needing more than MoneyPrecision
// digits after rounding are NULL.
func ToMoney(s string) pgtype.Numeric {
	n := RoundNumeric(ToPgNumeric(s), MoneyPlaces)
	if n.Valid && new(big.Int).Abs(n.Int).Cmp(pow10(MoneyPrecision)) >= 0 {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// RoundNumeric rounds n half away from zero to places fractional digits.
// The result always has exactly places fractional digits.
func RoundNumeric(n pgtype.Numeric, places int32) pgtype.Numeric {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return pgtype.Numeric{Valid: false}
	}

	target := -places
	v := new(big.Int).Set(n.Int)

	if n.Exp >= target {
		v.Mul(v, pow10(int64(n.Exp-target)))
		return pgtype.Numeric{Int: v, Exp: target, Valid: true}
	}

	div := pow10(int64(target - n.Exp))
	q, r := new(big.Int).QuoRem(v, div, new(big.Int))
	r.Abs(r).Lsh(r, 1)
	if r.Cmp(div) >= 0 {
		if v.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return pgtype.Numeric{Int: q, Exp: target, Valid: true}
}

// ToPgInt4 converts s to a nullable integer. Whole-valued decimals such as
// "3.0" are accepted; fractions and values outside int32 are NULL.
func ToPgInt4(s string) pgtype.Int4 {
	n := ToPgNumeric(s)
	if !n.Valid {
		return pgtype.Int4{Valid: false}
	}

	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		if n.Exp > 10 && v.Sign() != 0 {
			return pgtype.Int4{Valid: false}
		}
		v.Mul(v, pow10(int64(n.Exp)))
	} else if n.Exp < 0 {
		q, r := new(big.Int).QuoRem(v, pow10(int64(-n.Exp)), new(big.Int))
		if r.Sign() != 0 {
			return pgtype.Int4{Valid: false}
		}
		v = q
	}

	if !v.IsInt64() {
		return pgtype.Int4{Valid: false}
	}
	i := v.Int64()
	if i < math.MinInt32 || i > math.MaxInt32 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

// ToPgFloat8 converts s to a nullable float. NaN and infinities are NULL.
func ToPgFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgTimestamp parses s as a local, unqualified timestamp.
// Unparseable input is NULL.
func ToPgTimestamp(s string) pgtype.Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{Valid: false}
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}
		}
	}

	return pgtype.Timestamp{Valid: false}
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(n), nil)
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a header cell:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return s
}

// FormatValue renders a record field as CSV text. NULL renders as "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case pgtype.Int4:
		if !x.Valid {
			return ""
		}
		return strconv.FormatInt(int64(x.Int32), 10)
	case pgtype.Float8:
		if !x.Valid {
			return ""
		}
		return strconv.FormatFloat(x.Float64, 'f', -1, 64)
	case pgtype.Numeric:
		return formatNumeric(x)
	case pgtype.Timestamp:
		if !x.Valid {
			return ""
		}
		return x.Time.Format(TimestampLayout)
	default:
		return ""
	}
}

// FormatRow renders every field of row with FormatValue.
func FormatRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}

func formatNumeric(n pgtype.Numeric) string {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return ""
	}

	if n.Exp >= 0 {
		v := new(big.Int).Mul(n.Int, pow10(int64(n.Exp)))
		return v.String()
	}

	digits := new(big.Int).Abs(n.Int).String()
	frac := int(-n.Exp)
	if len(digits) <= frac {
		digits = strings.Repeat("0", frac-len(digits)+1) + digits
	}

	point := len(digits) - frac
	out := digits[:point] + "." + digits[point:]
	if n.Int.Sign() < 0 {
		out = "-" + out
	}
	return out
}
