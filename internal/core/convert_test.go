package core

import (
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// ToPgNumeric Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string // FormatValue of the parsed numeric
	}{
		// Valid: Basic integers
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "zero", input: "0", wantValid: true, wantValue: "0"},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: "-456"},
		{name: "explicit plus", input: "+7", wantValid: true, wantValue: "7"},

		// Valid: Decimals
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: "123.45"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: "0.99"},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: "99"},
		{name: "negative fraction", input: "-0.05", wantValid: true, wantValue: "-0.05"},
		{name: "surrounding whitespace", input: "  12.5  ", wantValid: true, wantValue: "12.5"},

		// Valid: Scientific notation
		{name: "positive exponent", input: "1.5e3", wantValid: true, wantValue: "1500"},
		{name: "negative exponent", input: "25E-2", wantValid: true, wantValue: "0.25"},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "thousands separator", input: "1,000", wantValid: false},
		{name: "two points", input: "1.2.3", wantValid: false},
		{name: "nan literal", input: "NaN", wantValid: false},
		{name: "exponent out of range", input: "1e5000", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgNumeric(tt.input)
			if result.Valid != tt.wantValid {
				t.Fatalf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if got := FormatValue(result); got != tt.wantValue {
				t.Errorf("ToPgNumeric(%q) = %q, want %q", tt.input, got, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToMoney / RoundNumeric Tests
// ----------------------------------------------------------------------------

func TestToMoney(t *testing.T) {
	tests := []struct {
		input string
		want  string // "" means NULL
	}{
		{"19.999", "20.00"},
		{"10", "10.00"},
		{"10.0", "10.00"},
		{"58.9", "58.90"},
		{"0.005", "0.01"},
		{"0.004", "0.00"},
		{"-0.005", "-0.01"},
		{"2.345", "2.35"},
		{"-2.345", "-2.35"},
		{"1.2e1", "12.00"},
		{"129.99", "129.99"},
		{"999999999999.99", "999999999999.99"},
		{"-999999999999.99", "-999999999999.99"},
		{"1000000000000", ""},
		{"999999999999.995", ""},
		{"-1e12", ""},
		{"1e300", ""},
		{"", ""},
		{"free", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToMoney(tt.input)
			if tt.want == "" {
				if got.Valid {
					t.Errorf("ToMoney(%q) = %q, want NULL", tt.input, FormatValue(got))
				}
				return
			}
			if !got.Valid {
				t.Fatalf("ToMoney(%q) returned NULL, want %q", tt.input, tt.want)
			}
			if got.Exp != -MoneyPlaces {
				t.Errorf("ToMoney(%q).Exp = %d, want %d", tt.input, got.Exp, -MoneyPlaces)
			}
			if s := FormatValue(got); s != tt.want {
				t.Errorf("ToMoney(%q) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

func TestRoundNumeric_Invalid(t *testing.T) {
	if RoundNumeric(pgtype.Numeric{}, 2).Valid {
		t.Error("rounding NULL should stay NULL")
	}
	if RoundNumeric(pgtype.Numeric{NaN: true, Valid: true}, 2).Valid {
		t.Error("rounding NaN should be NULL")
	}
	if RoundNumeric(pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, 2).Valid {
		t.Error("rounding infinity should be NULL")
	}
}

// ----------------------------------------------------------------------------
// ToPgInt4 Tests
// ----------------------------------------------------------------------------

func TestToPgInt4(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int32
	}{
		{"5", true, 5},
		{" 42 ", true, 42},
		{"-3", true, -3},
		{"3.0", true, 3},
		{"3.00", true, 3},
		{"1e2", true, 100},
		{"0", true, 0},
		{"2147483647", true, math.MaxInt32},
		{"2147483648", false, 0},
		{"3.5", false, 0},
		{"", false, 0},
		{"x", false, 0},
		{"1e20", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgInt4(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgInt4(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Int32 != tt.want {
				t.Errorf("ToPgInt4(%q) = %d, want %d", tt.input, got.Int32, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgFloat8 Tests
// ----------------------------------------------------------------------------

func TestToPgFloat8(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"-23.54562128115268", true, "-23.54562128115268"},
		{"-46.63929204800168", true, "-46.63929204800168"},
		{"-23.50", true, "-23.5"},
		{"0", true, "0"},
		{"", false, ""},
		{"NaN", false, ""},
		{"Inf", false, ""},
		{"north", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgFloat8(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgFloat8(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if s := FormatValue(got); s != tt.want {
				t.Errorf("ToPgFloat8(%q) formats as %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgTimestamp Tests
// ----------------------------------------------------------------------------

func TestToPgTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{
			name:      "iso date time",
			input:     "2017-10-02 10:56:33",
			wantValid: true,
			want:      time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC),
		},
		{
			name:      "T separator",
			input:     "2017-10-02T10:56:33",
			wantValid: true,
			want:      time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC),
		},
		{
			name:      "fractional seconds",
			input:     "2018-01-18 21:46:59.123",
			wantValid: true,
			want:      time.Date(2018, 1, 18, 21, 46, 59, 123000000, time.UTC),
		},
		{
			name:      "minutes only",
			input:     "2018-01-18 21:46",
			wantValid: true,
			want:      time.Date(2018, 1, 18, 21, 46, 0, 0, time.UTC),
		},
		{
			name:      "date only",
			input:     "2018-01-18",
			wantValid: true,
			want:      time.Date(2018, 1, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "us slash date time",
			input:     "1/18/2018 21:46",
			wantValid: true,
			want:      time.Date(2018, 1, 18, 21, 46, 0, 0, time.UTC),
		},
		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "not a date", wantValid: false},
		{name: "impossible day", input: "2018-02-30 10:00:00", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgTimestamp(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgTimestamp(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && !got.Time.Equal(tt.want) {
				t.Errorf("ToPgTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Text Normalizer Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"hello", true, "hello"},
		{"  padded  ", true, "padded"},
		{"Mixed Case", true, "Mixed Case"},
		{"", false, ""},
		{" \t ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid || got.String != tt.want {
				t.Errorf("ToPgText(%q) = %+v, want {%q %v}", tt.input, got, tt.want, tt.wantValid)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"  Sao Paulo ", true, "sao paulo"},
		{"SP", true, "sp"},
		{"São Paulo", true, "são paulo"},
		{"beleza_saude", true, "beleza_saude"},
		{"", false, ""},
		{"   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got.Valid != tt.wantValid || got.String != tt.want {
				t.Errorf("NormalizeText(%q) = %+v, want {%q %v}", tt.input, got, tt.want, tt.wantValid)
			}
		})
	}
}

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
	}{
		{"1310", true, "01310"},
		{"01310-100", true, "01310"},
		{"01310", true, "01310"},
		{"14409", true, "14409"},
		{"1037", true, "01037"},
		{"7", true, "00007"},
		{" 13 023 ", true, "13023"},
		{"1310.0", true, "13100"},
		{"abc", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeZip(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("NormalizeZip(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if got.String != tt.want {
				t.Errorf("NormalizeZip(%q) = %q, want %q", tt.input, got.String, tt.want)
			}
			if len(got.String) != ZipWidth {
				t.Errorf("NormalizeZip(%q) length = %d, want %d", tt.input, len(got.String), ZipWidth)
			}
		})
	}
}

func TestFlattenLineBreaks(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "unix newline", input: "good\nproduct", wantValid: true, want: "good product"},
		{name: "windows newline", input: "good\r\nproduct", wantValid: true, want: "good product"},
		{name: "bare carriage return", input: "good\rproduct", wantValid: true, want: "good product"},
		{name: "mixed", input: "a\r\nb\nc\rd", wantValid: true, want: "a b c d"},
		{name: "no breaks", input: "recomendo", wantValid: true, want: "recomendo"},
		{name: "only breaks", input: "\r\n\n", wantValid: false},
		{name: "empty", input: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenLineBreaks(tt.input)
			if got.Valid != tt.wantValid || got.String != tt.want {
				t.Errorf("FlattenLineBreaks(%q) = %+v, want {%q %v}", tt.input, got, tt.want, tt.wantValid)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// FormatValue Tests
// ----------------------------------------------------------------------------

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "plain string", input: "abc", want: "abc"},
		{name: "null text", input: pgtype.Text{}, want: ""},
		{name: "text", input: pgtype.Text{String: "sp", Valid: true}, want: "sp"},
		{name: "null int", input: pgtype.Int4{}, want: ""},
		{name: "int", input: pgtype.Int4{Int32: -4, Valid: true}, want: "-4"},
		{name: "null numeric", input: pgtype.Numeric{}, want: ""},
		{name: "small fraction", input: ToMoney("0.07"), want: "0.07"},
		{name: "negative money", input: ToMoney("-12.5"), want: "-12.50"},
		{name: "null timestamp", input: pgtype.Timestamp{}, want: ""},
		{
			name:  "timestamp",
			input: pgtype.Timestamp{Time: time.Date(2018, 8, 8, 8, 38, 49, 500, time.UTC), Valid: true},
			want:  "2018-08-08 08:38:49",
		},
		{name: "unsupported type", input: 12, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.input); got != tt.want {
				t.Errorf("FormatValue(%#v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRow(t *testing.T) {
	row := []any{"o1", pgtype.Int4{Int32: 1, Valid: true}, ToMoney("58.9"), pgtype.Text{}}
	got := FormatRow(row)
	want := []string{"o1", "1", "58.90", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FormatRow()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"order_id", "order_id"},
		{"  order_id  ", "order_id"},
		{`"order_id"`, "order_id"},
		{`'order_id'`, "order_id"},
		{`="order_id"`, "order_id"},
		{"=order_id", "order_id"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		checks map[string]int // key -> expected index
	}{
		{
			name:   "olist headers",
			header: []string{"order_id", "customer_id", "order_status"},
			checks: map[string]int{
				"order_id":     0,
				"customer_id":  1,
				"order_status": 2,
			},
		},
		{
			name:   "case insensitive lookup",
			header: []string{"ORDER_ID", "Customer_Id"},
			checks: map[string]int{
				"order_id":    0,
				"customer_id": 1,
			},
		},
		{
			name:   "headers with quotes and whitespace cleaned",
			header: []string{` "review_id" `, `'order_id'`},
			checks: map[string]int{
				"review_id": 0,
				"order_id":  1,
			},
		},
		{
			name:   "empty header",
			header: []string{},
			checks: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := MakeHeaderIndex(tt.header)
			if len(idx) != len(tt.checks) {
				t.Errorf("MakeHeaderIndex(%v) has %d keys, want %d", tt.header, len(idx), len(tt.checks))
			}

			for key, wantPos := range tt.checks {
				gotPos, ok := idx[key]
				if !ok {
					t.Errorf("MakeHeaderIndex(%v)[%q] not found, want index %d",
						tt.header, key, wantPos)
					continue
				}
				if gotPos != wantPos {
					t.Errorf("MakeHeaderIndex(%v)[%q] = %d, want %d",
						tt.header, key, gotPos, wantPos)
				}
			}
		})
	}
}

// TestMakeHeaderIndex_DuplicateHeaders verifies behavior with duplicate column names
func TestMakeHeaderIndex_DuplicateHeaders(t *testing.T) {
	// When duplicates exist, the last occurrence wins
	header := []string{"order_id", "price", "order_id"}
	idx := MakeHeaderIndex(header)

	if gotPos, ok := idx["order_id"]; !ok || gotPos != 2 {
		t.Errorf("MakeHeaderIndex with duplicates: order_id index = %d, want 2", gotPos)
	}
}
