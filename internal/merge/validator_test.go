package merge_test

import (
	"errors"
	"testing"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/merge"
)

func TestValidateRecipientAccepts(t *testing.T) {
	addr, err := merge.ValidateRecipient("ann@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "ann@example.com" {
		t.Errorf("address changed: %q", addr)
	}
}

func TestValidateRecipientRejects(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"missing", nil},
		{"not a string", 42},
		{"empty", ""},
		{"no at sign", "bad"},
	}

	for _, tc := range cases {
		_, err := merge.ValidateRecipient(tc.value)
		if err == nil {
			t.Errorf("%s: expected error, got none", tc.name)
			continue
		}
		if err.Error() != "Invalid email address" {
			t.Errorf("%s: unexpected message %q", tc.name, err.Error())
		}
		var invalid *appErrors.ErrInvalidAddress
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected ErrInvalidAddress, got %T", tc.name, err)
		}
	}
}
