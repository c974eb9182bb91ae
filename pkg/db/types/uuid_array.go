package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a postgres uuid[] column. On sqlite the same array literal
// is stored as TEXT, so both drivers share one encoding.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = UUIDArray{}
		return nil
	case string:
		return a.parse(v)
	case []byte:
		return a.parse(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

func (a UUIDArray) Value() (driver.Value, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Contains reports whether id is an element of the array.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

// parse reads a postgres array literal. NULL elements are skipped.
func (a *UUIDArray) parse(literal string) error {
	body := strings.TrimSpace(literal)
	body = strings.TrimSuffix(strings.TrimPrefix(body, "{"), "}")
	if strings.TrimSpace(body) == "" {
		*a = UUIDArray{}
		return nil
	}

	parts := strings.Split(body, ",")
	out := make(UUIDArray, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"`))
		if strings.EqualFold(part, "NULL") {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", part, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}
