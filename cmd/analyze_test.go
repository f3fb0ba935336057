package cmd

import (
	"context"
	"errors"
	"testing"
)

func TestAwaitAnalysis_ReturnsReport(t *testing.T) {
	spin := func(_ context.Context, action func()) error {
		action()
		return nil
	}
	report, err := awaitAnalysis(context.Background(), spin, func(context.Context) (string, error) {
		return "# report", nil
	})
	if err != nil || report != "# report" {
		t.Fatalf("awaitAnalysis = %q, %v, want the report", report, err)
	}
}

func TestAwaitAnalysis_PassesAnalyzeError(t *testing.T) {
	want := errors.New("quota exceeded")
	spin := func(_ context.Context, action func()) error {
		action()
		return nil
	}
	_, err := awaitAnalysis(context.Background(), spin, func(context.Context) (string, error) {
		return "", want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestAwaitAnalysis_InterruptCancelsRequest(t *testing.T) {
	interrupted := errors.New("user interrupted")
	canceled := make(chan struct{})

	spin := func(_ context.Context, action func()) error {
		go action()
		return interrupted
	}
	analyze := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(canceled)
		return "late report", nil
	}

	report, err := awaitAnalysis(context.Background(), spin, analyze)
	if !errors.Is(err, interrupted) {
		t.Fatalf("error = %v, want the interrupt", err)
	}
	if report != "" {
		t.Fatalf("report = %q, want none after an interrupt", report)
	}
	<-canceled
}

func TestAwaitAnalysis_SpinWithoutAction(t *testing.T) {
	spin := func(context.Context, func()) error { return nil }
	if _, err := awaitAnalysis(context.Background(), spin, func(context.Context) (string, error) {
		return "x", nil
	}); err == nil {
		t.Fatal("awaitAnalysis returned nil error when the action never ran")
	}
}
