package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestRecord_RoundTrip(t *testing.T) {
	h := openTest(t)
	started := time.Date(2025, 6, 1, 10, 0, 0, 123, time.UTC)

	in := Run{
		Project:         "vault",
		Root:            "/src/vault",
		Model:           "gemini-1.5-pro",
		ContentChars:    4000,
		EstimatedTokens: 2000,
		EstimatedCost:   0.007,
		OverBudget:      true,
		OutputPath:      "gemini_analysis.md",
		Stage:           "persist",
		Status:          "ok",
		StartedAt:       started,
		FinishedAt:      started.Add(42 * time.Second),
	}
	id, err := h.Record(in)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Record returned empty ID")
	}

	runs, err := h.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("Recent = %d runs, want 1", len(runs))
	}

	got := runs[0]
	in.ID = id
	if got != in {
		t.Fatalf("round trip = %+v\nwant %+v", got, in)
	}
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	h := openTest(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, p := range []string{"a", "b", "c"} {
		_, err := h.Record(Run{
			Project:   p,
			Stage:     "persist",
			Status:    "ok",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Project != "c" || runs[1].Project != "b" {
		t.Fatalf("Recent(2) projects = %v, want [c b]", projects(runs))
	}

	all, err := h.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent(0) = %d runs, want 3", len(all))
	}
}

func TestTotalEstimatedCost_SkipsFailed(t *testing.T) {
	h := openTest(t)
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	records := []Run{
		{Project: "a", Stage: "persist", Status: "ok", EstimatedCost: 0.25, StartedAt: now},
		{Project: "b", Stage: "persist", Status: "degraded", EstimatedCost: 0.5, StartedAt: now},
		{Project: "c", Stage: "analyze", Status: "failed", EstimatedCost: 9, StartedAt: now},
		{Project: "d", Stage: "persist", Status: "ok", EstimatedCost: 4, StartedAt: now.AddDate(0, -2, 0)},
	}
	for _, r := range records {
		if _, err := h.Record(r); err != nil {
			t.Fatal(err)
		}
	}

	total, err := h.TotalEstimatedCost(now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatal(err)
	}
	if total != 0.75 {
		t.Fatalf("TotalEstimatedCost = %v, want 0.75", total)
	}
}

func projects(runs []Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Project
	}
	return out
}
