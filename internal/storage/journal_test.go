package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"livrocaixa/internal/core"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	first, err := j.Record(ctx, core.Activity{
		Action:        core.ActionCreated,
		TransactionID: 7,
		Description:   "Mercado",
		Kind:          core.KindExpense,
		AmountCents:   4050,
		RequestID:     "req-1",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Errorf("Record did not fill ID/CreatedAt: %+v", first)
	}
	if _, err := j.Record(ctx, core.Activity{Action: core.ActionDeleted, TransactionID: 7}); err != nil {
		t.Fatal(err)
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Action != core.ActionDeleted || got[1].Description != "Mercado" {
		t.Fatalf("Recent = %+v", got)
	}
	if got[1].Kind != core.KindExpense || got[1].AmountCents != 4050 || got[1].RequestID != "req-1" {
		t.Errorf("fields not round-tripped: %+v", got[1])
	}
}

func TestJournal_RejectsUnknownAction(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.Record(context.Background(), core.Activity{Action: "edited"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestJournal_PendingLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	a, _ := j.Record(ctx, core.Activity{Action: core.ActionCreated, TransactionID: 1})
	b, _ := j.Record(ctx, core.Activity{Action: core.ActionCreated, TransactionID: 2})

	pending, err := j.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != a.ID {
		t.Fatalf("Pending = %+v", pending)
	}

	if err := j.MarkPublished(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := j.MarkFailed(ctx, b.ID, errors.New("broker down")); err != nil {
		t.Fatal(err)
	}

	pending, _ = j.Pending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != b.ID || pending[0].Attempts != 1 || pending[0].LastError != "broker down" {
		t.Fatalf("Pending after publish = %+v", pending)
	}

	recent, _ := j.Recent(ctx, 10)
	for _, r := range recent {
		if r.ID == a.ID && (r.PublishedAt == nil || !r.PublishedAt.Equal(fixed)) {
			t.Errorf("PublishedAt = %v, want %v", r.PublishedAt, fixed)
		}
	}
}

func TestJournal_ExhaustedEntriesLeavePending(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	a, _ := j.Record(ctx, core.Activity{Action: core.ActionDeleted, TransactionID: 3})

	for i := 0; i < MaxAttempts; i++ {
		if err := j.MarkFailed(ctx, a.ID, errors.New("nope")); err != nil {
			t.Fatal(err)
		}
	}
	pending, _ := j.Pending(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("Pending = %+v, want none", pending)
	}
}

func TestJournal_UpdateMissing(t *testing.T) {
	j := openTestJournal(t)
	if err := j.MarkPublished(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
