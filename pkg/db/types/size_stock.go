package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SizeStock maps a size label to the units available in that size. The
// column is stored as jsonb. Keys are kept exactly as provided; lookups
// that need to be case insensitive go through NormalizedGet.
type SizeStock map[string]int

func (s *SizeStock) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("SizeStock: unsupported Scan type %T", src)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*s = nil
		return nil
	}

	var out map[string]int
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("SizeStock: decode: %w", err)
	}
	*s = SizeStock(out)
	return nil
}

func (s SizeStock) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]int(s))
	if err != nil {
		return nil, fmt.Errorf("SizeStock: encode: %w", err)
	}
	return string(raw), nil
}

// Total sums the units across every size bucket.
func (s SizeStock) Total() int {
	total := 0
	for _, qty := range s {
		if qty > 0 {
			total += qty
		}
	}
	return total
}

// NormalizedGet looks up a size ignoring case and surrounding spaces.
// The second return is the stored key, so callers can write back to the
// exact bucket they read from.
func (s SizeStock) NormalizedGet(size string) (int, string, bool) {
	want := strings.ToUpper(strings.TrimSpace(size))
	for key, qty := range s {
		if strings.ToUpper(strings.TrimSpace(key)) == want {
			return qty, key, true
		}
	}
	return 0, "", false
}

// Validate rejects blank size labels and negative quantities.
func (s SizeStock) Validate() error {
	for key, qty := range s {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("size label must not be blank")
		}
		if qty < 0 {
			return fmt.Errorf("size %q has negative stock %d", key, qty)
		}
	}
	return nil
}

// Clone returns a copy safe to mutate.
func (s SizeStock) Clone() SizeStock {
	if s == nil {
		return nil
	}
	out := make(SizeStock, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
