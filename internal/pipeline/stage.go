package pipeline

import "fmt"

// Stage identifies one step of an analysis run. Stages run in declaration
// order, exactly once each.
type Stage int

const (
	StageFlatten Stage = iota
	StageCredentials
	StageEstimate
	StageAnalyze
	StagePersist
)

func (s Stage) String() string {
	switch s {
	case StageFlatten:
		return "flatten"
	case StageCredentials:
		return "credentials"
	case StageEstimate:
		return "estimate"
	case StageAnalyze:
		return "analyze"
	case StagePersist:
		return "persist"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// action describes the stage in error messages ("Error <action>: ...").
func (s Stage) action() string {
	switch s {
	case StageFlatten:
		return "flattening contracts"
	case StageCredentials:
		return "getting API credentials"
	case StageEstimate:
		return "estimating cost"
	case StageAnalyze:
		return "during Gemini analysis"
	case StagePersist:
		return "saving report"
	default:
		return s.String()
	}
}

// FailFast reports whether a failure in s ends the run. Only persist
// degrades instead: its report is already computed and must not be lost.
func (s Stage) FailFast() bool {
	return s != StagePersist
}

// StageError is a failure tagged with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.action(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Status is the final state of a run.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)
