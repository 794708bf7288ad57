// Package storetest provides a compliance test suite for context store
// port implementations.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epicflowhq/epicflow/internal/domain"
	"github.com/epicflowhq/epicflow/internal/domain/epic"
	"github.com/epicflowhq/epicflow/internal/port/contextstore"
)

func entry(issue int, title string) epic.ContextEntry {
	return epic.ContextEntry{
		IssueNumber: issue,
		Input:       epic.WorkItem{IssueNumber: issue, Title: title},
		Analysis:    epic.Analysis{EpicType: epic.DefaultType, Confidence: 0.5},
		UpdatedAt:   time.Now(),
	}
}

// Run runs the standard compliance test suite against any Store implementation.
func Run(t *testing.T, s contextstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("StoreAndGet", func(t *testing.T) {
		if err := s.Store(ctx, entry(9001, "first")); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, 9001)
		if err != nil {
			t.Fatal(err)
		}
		if got.Input.Title != "first" {
			t.Fatalf("expected stored entry, got %+v", got)
		}
	})

	t.Run("GetMissIsErrNotFound", func(t *testing.T) {
		_, err := s.Get(ctx, 999999)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for absent id, got %v", err)
		}
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		_ = s.Store(ctx, entry(9002, "v1"))
		if err := s.Store(ctx, entry(9002, "v2")); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, 9002)
		if err != nil {
			t.Fatal(err)
		}
		if got.Input.Title != "v2" {
			t.Fatalf("expected last write to win, got %q", got.Input.Title)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = s.Store(ctx, entry(9003, "doomed"))
		if err := s.Delete(ctx, 9003); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, 9003); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after Delete, got %v", err)
		}
	})

	t.Run("Len", func(t *testing.T) {
		before, err := s.Len(ctx)
		if err != nil {
			t.Fatal(err)
		}
		_ = s.Store(ctx, entry(9004, "counted"))
		after, err := s.Len(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if after != before+1 {
			t.Fatalf("expected Len %d, got %d", before+1, after)
		}
	})
}
