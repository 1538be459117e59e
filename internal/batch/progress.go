package batch

// State describes where a run is in its lifecycle. Terminal states are
// sticky: nothing transitions out of them except starting a brand-new run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateError     State = "error"
)

// Terminal reports whether no further per-file processing can occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateError
}

// FileError records one per-file failure, keyed by the source file's path.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Progress is a snapshot of the run state: counts, current file, terminal
// state and the ordered error list. The invariant
// ProcessedCount == SuccessCount + ErrorCount + SkippedCount holds after
// every per-file step.
type Progress struct {
	State           State       `json:"state"`
	TotalFiles      int         `json:"total_files"`
	ProcessedCount  int         `json:"processed_count"`
	SuccessCount    int         `json:"success_count"`
	ErrorCount      int         `json:"error_count"`
	SkippedCount    int         `json:"skipped_count"`
	CurrentFile     string      `json:"current_file"`
	ProgressPercent float64     `json:"progress_percent"`
	Errors          []FileError `json:"errors"`
}

// Percent returns completion as a percentage of total files.
func (p Progress) Percent() float64 {
	if p.TotalFiles == 0 {
		return 0
	}
	return float64(p.ProcessedCount) / float64(p.TotalFiles) * 100.0
}

// clone returns an independent copy safe to hand to readers.
func (p Progress) clone() Progress {
	out := p
	out.ProgressPercent = p.Percent()
	out.Errors = make([]FileError, len(p.Errors))
	copy(out.Errors, p.Errors)
	return out
}
