package gorm

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// pgtype.Map caches plans internally and is not safe for concurrent use
var typeMaps = sync.Pool{New: func() any { return pgtype.NewMap() }}

// TextArray maps a Postgres text[] column. NULL elements are dropped when
// reading. On dialects without arrays the column holds the array literal as
// plain text.
type TextArray []string

// GormDataType keeps schema parsing off the slice kind, which GORM rejects
func (TextArray) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect
func (TextArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Scan implements sql.Scanner
func (a *TextArray) Scan(src interface{}) error {
	var literal []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		literal = []byte(v)
	case []byte:
		literal = v
	default:
		return fmt.Errorf("cannot scan %T into TextArray", src)
	}

	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)

	var elems []pgtype.Text
	if err := m.Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, literal, &elems); err != nil {
		return fmt.Errorf("parse text array: %w", err)
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Valid {
			out = append(out, e.String)
		}
	}
	*a = out
	return nil
}

// Value implements driver.Valuer
func (a TextArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}

	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)

	buf, err := m.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, []string(a), nil)
	if err != nil {
		return nil, fmt.Errorf("encode text array: %w", err)
	}
	return string(buf), nil
}

// Strings returns the elements, never nil
func (a TextArray) Strings() []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}
