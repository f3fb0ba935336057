package cli

import (
	"strings"
	"testing"
)

func TestRenderTable_LayoutAndSeparator(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Models",
		Headers: []string{"Model", "Price"},
		Rows: [][]string{
			{"gemini-1.5-flash", "$0.00015"},
			{"---"},
			{"gemini-1.5-pro", "$0.0035"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top, header, header sep, row, sep, row, bottom
	if len(lines) != 8 {
		t.Fatalf("RenderTable produced %d lines, want 8:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "gemini-1.5-flash") || !strings.Contains(out, "$0.0035") {
		t.Fatalf("RenderTable missing cells:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("RenderTable(empty) = %q, want empty", got)
	}
}
