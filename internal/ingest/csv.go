// internal/ingest/csv.go
package ingest

import (
    "encoding/csv"
    "fmt"
    "io"
    "strings"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// ParseCSV reads a recipient table. Header names are lower-cased so template
// lookups and the email requirement are case-insensitive. The table must
// carry an email column; individual rows may still hold unusable addresses,
// which is a dispatch-time failure, not an ingestion error.
func ParseCSV(r io.Reader) ([]model.Row, []string, error) {
    reader := csv.NewReader(r)
    reader.TrimLeadingSpace = true

    header, err := reader.Read()
    if err == io.EOF {
        return nil, nil, fmt.Errorf("file is empty")
    }
    if err != nil {
        return nil, nil, fmt.Errorf("failed to read header: %w", err)
    }

    columns := make([]string, len(header))
    hasEmail := false
    for i, name := range header {
        columns[i] = strings.ToLower(strings.TrimSpace(name))
        if columns[i] == "email" {
            hasEmail = true
        }
    }
    if !hasEmail {
        return nil, nil, fmt.Errorf("the file must contain an 'email' column")
    }

    rows := []model.Row{}
    for {
        record, err := reader.Read()
        if err == io.EOF {
            break
        }
        if err != nil {
            return nil, nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
        }
        row := make(model.Row, len(columns))
        for i, col := range columns {
            if i < len(record) {
                row[col] = record[i]
            }
        }
        rows = append(rows, row)
    }

    return rows, columns, nil
}
