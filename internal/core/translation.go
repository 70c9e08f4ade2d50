package core

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Translation maps raw category labels to canonical labels. Keys are stored
// trimmed and lower-cased, the same way category values are normalized.
// A nil *Translation is valid and translates nothing.
type Translation struct {
	labels map[string]string
}

// NewTranslation creates an empty Translation.
func NewTranslation() *Translation {
	return &Translation{labels: make(map[string]string)}
}

// LoadTranslation builds a Translation from a two-column table (raw label,
// canonical label). Columns are taken by position, not by header name.
func LoadTranslation(raw *RawTable) *Translation {
	t := NewTranslation()
	for _, rec := range raw.Records {
		if len(rec) < 2 {
			continue
		}
		t.Add(rec[0], rec[1])
	}
	return t
}

// Add records a mapping. The first mapping for a key wins; blank keys and
// blank canonical labels are ignored. Reports whether the mapping was kept.
func (t *Translation) Add(raw, canonical string) bool {
	key := strings.ToLower(strings.TrimSpace(raw))
	canonical = strings.TrimSpace(canonical)
	if key == "" || canonical == "" {
		return false
	}
	if _, exists := t.labels[key]; exists {
		return false
	}
	t.labels[key] = canonical
	return true
}

// Len returns the number of mappings.
func (t *Translation) Len() int {
	if t == nil {
		return 0
	}
	return len(t.labels)
}

// Lookup returns the canonical label for v when one exists and v otherwise.
// NULL never matches.
func (t *Translation) Lookup(v pgtype.Text) pgtype.Text {
	if t == nil || !v.Valid {
		return v
	}
	if canonical, ok := t.labels[v.String]; ok {
		return pgtype.Text{String: canonical, Valid: true}
	}
	return v
}
