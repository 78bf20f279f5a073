// internal/model/row.go
package model

// Row holds one recipient's personalization data, keyed by lower-cased field
// name. Values are scalars as produced by ingestion (string, number, nil).
type Row map[string]any

// EmailValue returns the raw value under the "email" key, which may be absent
// or of any type. Validation happens in the dispatch loop, not here.
func (r Row) EmailValue() any {
    return r["email"]
}
