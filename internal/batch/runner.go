package batch

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/photoflow/internal/imageio"
	"github.com/MeKo-Tech/photoflow/internal/transform"
)

// Runner owns the lifecycle of batch runs. At most one run is active per
// Runner at any time; the start guard is an atomic compare-and-set from
// idle/terminal to running. Files are processed strictly sequentially so
// at most one decoded image is held in memory, regardless of batch size.
type Runner struct {
	mu       sync.Mutex
	progress Progress

	running   atomic.Bool
	cancelled atomic.Bool

	callbacks []ProgressCallback
	done      chan struct{}
}

// NewRunner creates a Runner in the idle state.
func NewRunner() *Runner {
	return &Runner{progress: Progress{State: StateIdle}}
}

// AddCallback registers a progress observer. Callbacks must be registered
// before Start; registrations during a run are not picked up by it.
func (r *Runner) AddCallback(cb ProgressCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// IsRunning reports whether a run is currently active.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// Snapshot returns a consistent copy of the current run state.
func (r *Runner) Snapshot() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.clone()
}

// Start validates the configuration and, when it passes, begins a run in a
// dedicated goroutine and returns immediately. It fails with a
// ValidationError for a bad configuration and with ErrAlreadyRunning while
// another run is active; in both cases the run state is untouched.
func (r *Runner) Start(cfg Config) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	r.cancelled.Store(false)

	r.mu.Lock()
	r.progress = Progress{State: StateRunning}
	callbacks := make([]ProgressCallback, len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		defer r.running.Store(false)
		r.run(cfg, callbacks)
	}()

	return nil
}

// Cancel requests cooperative cancellation. The flag is observed at file
// boundaries; an in-flight single-file transform is never interrupted.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// Wait blocks until the current run reaches a terminal state. It returns
// immediately if no run was ever started.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// run is the processing loop. It executes on the run's dedicated goroutine
// and is the sole writer of the run state.
func (r *Runner) run(cfg Config, callbacks []ProgressCallback) {
	engine, err := transform.NewEngine(cfg.TransformOptions())
	if err != nil {
		r.fatal(callbacks, fmt.Errorf("building transform pipeline: %w", err))
		return
	}

	if err := os.MkdirAll(cfg.OutputFolder, 0o750); err != nil {
		r.fatal(callbacks, fmt.Errorf("creating output folder: %w", err))
		return
	}

	files, err := DiscoverImages(cfg.InputFolder)
	if err != nil {
		r.fatal(callbacks, err)
		return
	}

	r.update(func(p *Progress) { p.TotalFiles = len(files) })
	for _, cb := range callbacks {
		cb.OnStart(len(files))
	}

	for _, inputPath := range files {
		if r.cancelled.Load() {
			r.finish(callbacks, StateCancelled)
			return
		}

		r.update(func(p *Progress) { p.CurrentFile = inputPath })

		r.processFile(engine, cfg, inputPath)

		snap := r.Snapshot()
		for _, cb := range callbacks {
			cb.OnFile(snap)
		}
	}

	r.finish(callbacks, StateCompleted)
}

// processFile handles one source image: skip, or decode-transform-encode.
// Every failure is converted into a single errors entry; nothing
// propagates out of the loop.
func (r *Runner) processFile(engine *transform.Engine, cfg Config, inputPath string) {
	outputPath := cfg.OutputPath(inputPath)

	if !cfg.OverwriteExisting {
		if _, err := os.Stat(outputPath); err == nil {
			r.update(func(p *Progress) {
				p.SkippedCount++
				p.ProcessedCount++
			})
			return
		}
	}

	err := func() error {
		img, err := imageio.Load(inputPath)
		if err != nil {
			return err
		}
		out, err := engine.Apply(img)
		if err != nil {
			return err
		}
		return imageio.Save(out, outputPath)
	}()

	r.update(func(p *Progress) {
		p.ProcessedCount++
		if err != nil {
			p.ErrorCount++
			p.Errors = append(p.Errors, FileError{File: inputPath, Error: err.Error()})
		} else {
			p.SuccessCount++
		}
	})
}

// finish moves the run to a terminal state and notifies observers once.
func (r *Runner) finish(callbacks []ProgressCallback, state State) {
	r.update(func(p *Progress) {
		p.CurrentFile = ""
		p.State = state
	})
	snap := r.Snapshot()
	for _, cb := range callbacks {
		cb.OnComplete(snap)
	}
}

// fatal records a batch-level failure that prevented any (further)
// progress and ends the run in the error state. Per-file outcomes already
// recorded are preserved.
func (r *Runner) fatal(callbacks []ProgressCallback, err error) {
	r.update(func(p *Progress) {
		p.CurrentFile = ""
		p.State = StateError
		p.Errors = append(p.Errors, FileError{File: "BATCH", Error: err.Error()})
	})
	snap := r.Snapshot()
	for _, cb := range callbacks {
		cb.OnComplete(snap)
	}
}

func (r *Runner) update(fn func(*Progress)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.progress)
}

// ProcessFolder runs one batch synchronously and returns the final state.
// Convenience wrapper for the CLI and tests.
func ProcessFolder(cfg Config, cb ProgressCallback) (Progress, error) {
	r := NewRunner()
	if cb != nil {
		r.AddCallback(cb)
	}
	if err := r.Start(cfg); err != nil {
		return Progress{}, err
	}
	r.Wait()
	return r.Snapshot(), nil
}
