package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func TestLedgerSummary(t *testing.T) {
	ledger := NewLedger()
	ledger.append(model.DispatchOutcome{RowIndex: 0, Status: model.OutcomeSuccess})
	ledger.append(model.DispatchOutcome{RowIndex: 1, Status: model.OutcomeFailed})
	ledger.append(model.DispatchOutcome{RowIndex: 2, Status: model.OutcomeSuccess})

	success, failed := ledger.Summary()
	if success != 2 || failed != 1 {
		t.Errorf("expected 2/1, got %d/%d", success, failed)
	}
}

func TestLedgerStampsRunID(t *testing.T) {
	ledger := NewLedger()
	if ledger.RunID() == "" {
		t.Fatal("ledger has no run id")
	}
	ledger.append(model.DispatchOutcome{RowIndex: 0, Status: model.OutcomeSuccess})

	if ledger.Outcomes()[0].RunID != ledger.RunID() {
		t.Error("outcome not stamped with the ledger's run id")
	}
}

func TestLedgerWriteCSV(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	ledger := NewLedger()
	ledger.append(model.DispatchOutcome{
		RowIndex:  0,
		Recipient: "ann@example.com",
		Status:    model.OutcomeSuccess,
		MessageID: "abc123",
		Timestamp: ts,
	})
	ledger.append(model.DispatchOutcome{
		RowIndex:    1,
		Recipient:   "bad",
		Status:      model.OutcomeFailed,
		ErrorDetail: "Invalid email address",
		Timestamp:   ts,
	})

	var sb strings.Builder
	if err := ledger.WriteCSV(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "recipient,status,message_id,error,timestamp" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "ann@example.com,Success,abc123,,2025-03-14 09:26:53" {
		t.Errorf("unexpected first record %q", lines[1])
	}
	if lines[2] != "bad,Failed,,Invalid email address,2025-03-14 09:26:53" {
		t.Errorf("unexpected second record %q", lines[2])
	}
}
