package gaprun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/simcheck/internal/domain"
	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRun(id string, created time.Time) *domgap.Run {
	return &domgap.Run{
		ID: id,
		Params: domgap.RunParams{
			Variant:       domgap.VariantFunnel,
			Source:        "filestack",
			Collection:    "filestack_blogs",
			Depth:         domgap.DepthQuick,
			MinSimilarity: 0.3,
			FunnelFocus:   "awareness",
			IndustryFocus: "all",
		},
		Status:       domgap.RunRunning,
		Combinations: 25,
		Batches:      3,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestStore_CreateGetUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC)

	run := newRun("r1", created)
	if err := s.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domgap.RunRunning || got.Params != run.Params || !got.CreatedAt.Equal(created) {
		t.Errorf("got = %+v", got)
	}
	if got.Gaps == nil || got.FailedBatches == nil || got.FinishedAt != nil {
		t.Errorf("empty collections should round-trip as empty: %+v", got)
	}

	finished := created.Add(time.Minute)
	run.Status = domgap.RunCancelled
	run.Analyzed, run.BatchesDone = 20, 2
	run.FailedBatches = []int{2}
	run.Gaps = []domgap.Gap{{
		Combination: domgap.Combination{
			Topic: "API", Aspect: "what is {topic}", SearchQuery: "what is API",
			PriorityScore: 90, FunnelStage: "awareness", ContentType: domgap.ContentExplanation,
		},
		OpportunityScore: 90,
		Reason:           "No existing content found",
	}}
	run.Stats = domgap.Summarize(run.Gaps)
	run.UpdatedAt, run.FinishedAt = finished, &finished
	if err := s.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err = s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domgap.RunCancelled || got.Analyzed != 20 || len(got.FailedBatches) != 1 {
		t.Errorf("got = %+v", got)
	}
	if len(got.Gaps) != 1 || got.Gaps[0].ContentType != domgap.ContentExplanation || got.Stats.High != 1 {
		t.Errorf("gaps = %+v stats = %+v", got.Gaps, got.Stats)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("finished at = %v", got.FinishedAt)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("Get: expected ErrRunNotFound, got %v", err)
	}
	if err := s.Update(ctx, newRun("missing", time.Now())); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("Update: expected ErrRunNotFound, got %v", err)
	}
}

func TestStore_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, newRun("dup", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, newRun("dup", time.Now())); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Create(ctx, newRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("order = %v", ids(all))
	}

	two, _ := s.List(ctx, 2)
	if len(two) != 2 || two[1].ID != "mid" {
		t.Errorf("limited = %v", ids(two))
	}
}

func ids(runs []domgap.Run) []string {
	out := make([]string, len(runs))
	for i := range runs {
		out[i] = runs[i].ID
	}
	return out
}
