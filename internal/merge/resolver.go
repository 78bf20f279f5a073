// internal/merge/resolver.go
package merge

import (
    "fmt"
    "regexp"
    "strconv"
    "strings"

    "github.com/unclebandit/mailmerge-backend/internal/model"
)

// placeholderPattern matches {{field}} tokens, lazily, so adjacent tokens
// never merge into one match.
var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Resolve substitutes {{field}} tokens in text with values from the row.
// Field names are trimmed and lower-cased before lookup. Unknown fields are
// left untouched so a partially filled template still sends. Substituted
// values are never re-scanned.
func Resolve(text string, row model.Row) string {
    return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
        field := strings.ToLower(strings.TrimSpace(match[2 : len(match)-2]))
        value, ok := row[field]
        if !ok {
            return match
        }
        return stringify(value)
    })
}

// Fields returns the trimmed, lower-cased placeholder names in text, in order
// of first appearance. Used by the preview endpoint to report which fields a
// template expects.
func Fields(text string) []string {
    seen := map[string]bool{}
    fields := []string{}
    for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
        name := strings.ToLower(strings.TrimSpace(m[1]))
        if !seen[name] {
            seen[name] = true
            fields = append(fields, name)
        }
    }
    return fields
}

// stringify renders a row value into its canonical string form. Nil renders
// as the empty string rather than a literal "null".
func stringify(value any) string {
    switch v := value.(type) {
    case nil:
        return ""
    case string:
        return v
    case float64:
        return strconv.FormatFloat(v, 'f', -1, 64)
    case float32:
        return strconv.FormatFloat(float64(v), 'f', -1, 32)
    case int:
        return strconv.Itoa(v)
    case int64:
        return strconv.FormatInt(v, 10)
    case bool:
        return strconv.FormatBool(v)
    default:
        return fmt.Sprintf("%v", v)
    }
}
