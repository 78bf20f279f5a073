// internal/merge/validator.go
package merge

import (
    "strings"

    appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
)

// ValidateRecipient checks that a row's email value is usable as a send
// target: present, a string, non-empty, and containing at least one "@".
// This is deliberately coarse, not RFC 5322 parsing. It returns the address
// unchanged on success.
func ValidateRecipient(value any) (string, error) {
    addr, ok := value.(string)
    if !ok || addr == "" || !strings.Contains(addr, "@") {
        return "", appErrors.NewInvalidAddress(addr)
    }
    return addr, nil
}
