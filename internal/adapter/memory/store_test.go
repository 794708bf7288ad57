package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/epicflowhq/epicflow/internal/adapter/memory"
	"github.com/epicflowhq/epicflow/internal/domain"
	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/port/contextstore/storetest"
)

func TestStore_GetMissReturnsNotFound(t *testing.T) {
	s := memory.New(0)
	_, err := s.Get(context.Background(), 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	s := memory.New(0)
	ctx := context.Background()

	first := epic.ContextEntry{
		IssueNumber: 7,
		Input:       epic.WorkItem{IssueNumber: 7, Title: "first"},
		Analysis:    epic.Analysis{EpicType: epic.TypeFoundation},
	}
	second := epic.ContextEntry{
		IssueNumber: 7,
		Input:       epic.WorkItem{IssueNumber: 7, Title: "second"},
		Analysis:    epic.Analysis{EpicType: epic.TypeUI},
	}

	if err := s.Store(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Store(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.Title != "second" {
		t.Errorf("expected last write to win, got title %q", got.Input.Title)
	}
	if got.Analysis.EpicType != epic.TypeUI {
		t.Errorf("expected overwritten analysis, got %s", got.Analysis.EpicType)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}

	n, err := s.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", n)
	}
}

func TestStore_NegativeIssueNumberIsValidKey(t *testing.T) {
	s := memory.New(0)
	ctx := context.Background()

	entry := epic.ContextEntry{IssueNumber: -1, Input: epic.WorkItem{IssueNumber: -1}}
	if err := s.Store(ctx, entry); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, -1); err != nil {
		t.Fatalf("expected entry for issue -1, got %v", err)
	}
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	s := memory.New(3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := s.Store(ctx, epic.ContextEntry{IssueNumber: i}); err != nil {
			t.Fatal(err)
		}
	}
	// Fourth insert pushes out issue 1, the oldest write.
	if err := s.Store(ctx, epic.ContextEntry{IssueNumber: 4}); err != nil {
		t.Fatal(err)
	}

	n, _ := s.Len(ctx)
	if n != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", n)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected oldest entry evicted, got %v", err)
	}
	if _, err := s.Get(ctx, 4); err != nil {
		t.Errorf("expected newest entry present, got %v", err)
	}
}

func TestStore_OverwriteDoesNotEvict(t *testing.T) {
	s := memory.New(2)
	ctx := context.Background()

	_ = s.Store(ctx, epic.ContextEntry{IssueNumber: 1})
	_ = s.Store(ctx, epic.ContextEntry{IssueNumber: 2})
	// Re-storing an existing key at capacity must not evict anything.
	_ = s.Store(ctx, epic.ContextEntry{IssueNumber: 2})

	if _, err := s.Get(ctx, 1); err != nil {
		t.Errorf("expected issue 1 retained, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := memory.New(0)
	ctx := context.Background()

	_ = s.Store(ctx, epic.ContextEntry{IssueNumber: 9})
	if err := s.Delete(ctx, 9); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, 9); err != nil {
		t.Fatal("delete of absent entry should not error")
	}
}

func TestStore_Compliance(t *testing.T) {
	storetest.Run(t, memory.New(100))
}
