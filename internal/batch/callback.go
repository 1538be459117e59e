package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives run updates: once at start with the discovered
// file count, once after every file with a consistent snapshot, and once
// when a terminal state is reached.
type ProgressCallback interface {
	OnStart(total int)
	OnFile(p Progress)
	OnComplete(p Progress)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)     {}
func (NoOpProgressCallback) OnFile(p Progress)     {}
func (NoOpProgressCallback) OnComplete(p Progress) {}

// ConsoleProgressCallback draws a progress bar on the console.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	lastUpdate     time.Time
	updateInterval time.Duration
	startTime      time.Time
	mutex          sync.Mutex
}

// NewConsoleProgressCallback creates a console progress reporter.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          50,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithUpdateInterval sets how frequently the progress bar redraws.
func (c *ConsoleProgressCallback) WithUpdateInterval(interval time.Duration) *ConsoleProgressCallback {
	c.updateInterval = interval
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.startTime = time.Now()
	c.lastUpdate = time.Time{}

	_, _ = fmt.Fprintf(c.writer, "%s0/%d (0.0%%)\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnFile(p Progress) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && p.ProcessedCount < p.TotalFiles {
		return
	}
	c.lastUpdate = now

	c.drawProgressBar(p)
}

func (c *ConsoleProgressCallback) OnComplete(p Progress) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.drawProgressBar(p)
	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%s%s: %d ok, %d failed, %d skipped in %v\n",
		c.prefix, p.State, p.SuccessCount, p.ErrorCount, p.SkippedCount,
		elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) drawProgressBar(p Progress) {
	if p.TotalFiles == 0 {
		return
	}

	filled := c.width * p.ProcessedCount / p.TotalFiles
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)

	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f%%)",
		c.prefix, bar, p.ProcessedCount, p.TotalFiles, p.Percent())
}

// LogProgressCallback logs run updates using slog.
type LogProgressCallback struct {
	logger   *slog.Logger
	level    slog.Level
	interval int
	lastLog  int
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{
		logger:   logger,
		level:    level,
		interval: 10, // log every 10 files by default
	}
}

// WithInterval sets how frequently to log progress (every N files).
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	l.interval = interval
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.lastLog = 0
	l.logger.Log(nil, l.level, "starting batch run", "total", total)
}

func (l *LogProgressCallback) OnFile(p Progress) {
	if p.ProcessedCount-l.lastLog < l.interval && p.ProcessedCount != p.TotalFiles {
		return
	}
	l.lastLog = p.ProcessedCount
	l.logger.Log(nil, l.level, "batch progress",
		"processed", p.ProcessedCount,
		"total", p.TotalFiles,
		"success", p.SuccessCount,
		"errors", p.ErrorCount,
		"skipped", p.SkippedCount,
	)
}

func (l *LogProgressCallback) OnComplete(p Progress) {
	l.logger.Log(nil, l.level, "batch run finished",
		"state", string(p.State),
		"processed", p.ProcessedCount,
		"success", p.SuccessCount,
		"errors", p.ErrorCount,
		"skipped", p.SkippedCount,
	)
}

// MultiProgressCallback fans updates out to multiple callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a callback that reports to all of the
// given callbacks, in order.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

// Add appends another callback.
func (m *MultiProgressCallback) Add(callback ProgressCallback) {
	m.callbacks = append(m.callbacks, callback)
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnFile(p Progress) {
	for _, cb := range m.callbacks {
		cb.OnFile(p)
	}
}

func (m *MultiProgressCallback) OnComplete(p Progress) {
	for _, cb := range m.callbacks {
		cb.OnComplete(p)
	}
}

// FuncProgressCallback adapts plain functions to the callback interface.
// Nil fields are skipped.
type FuncProgressCallback struct {
	Start    func(total int)
	File     func(p Progress)
	Complete func(p Progress)
}

func (f FuncProgressCallback) OnStart(total int) {
	if f.Start != nil {
		f.Start(total)
	}
}

func (f FuncProgressCallback) OnFile(p Progress) {
	if f.File != nil {
		f.File(p)
	}
}

func (f FuncProgressCallback) OnComplete(p Progress) {
	if f.Complete != nil {
		f.Complete(p)
	}
}
