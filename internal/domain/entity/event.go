package entity

type RunEventKind string

const (
	RunStarted  RunEventKind = "started"
	RunFinished RunEventKind = "finished"
	RunFailed   RunEventKind = "failed"
	RunPaused   RunEventKind = "paused"
	RunResumed  RunEventKind = "resumed"
)

// RunEvent is a run lifecycle notification. Summary is set for RunFinished,
// Err for RunFailed.
type RunEvent struct {
	Kind    RunEventKind
	RunID   string
	Summary RunSummary
	Err     error
}
