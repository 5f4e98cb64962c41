package gocas

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ============================================================
// Step trace
// ============================================================

// Step is one recorded solver move.
type Step struct {
	Move    string
	Operand Node
	Result  Statement
	Note    string
}

func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Move)
	if s.Operand != nil {
		b.WriteString(" " + s.Operand.String())
	}
	if s.Result != nil {
		b.WriteString(": " + s.Result.String())
	}
	if s.Note != "" {
		b.WriteString(" (" + s.Note + ")")
	}
	return b.String()
}

// Recorder observes the solver. OpenBranch announces a case split into n
// branches; the handle's Next starts each branch in turn and CloseBranch
// ends the split.
type Recorder interface {
	Record(step Step)
	OpenBranch(n int) BranchHandle
	CloseBranch()
}

type BranchHandle interface {
	Next()
}

// NopRecorder discards every step.
type NopRecorder struct{}

func (NopRecorder) Record(Step)                 {}
func (NopRecorder) OpenBranch(int) BranchHandle { return nopBranch{} }
func (NopRecorder) CloseBranch()                {}

type nopBranch struct{}

func (nopBranch) Next() {}

// LogRecorder forwards steps to a structured logger at debug level.
type LogRecorder struct {
	Logger *slog.Logger

	mu    sync.Mutex
	depth int
}

func NewLogRecorder(l *slog.Logger) *LogRecorder { return &LogRecorder{Logger: l} }

func (r *LogRecorder) Record(s Step) {
	r.mu.Lock()
	depth := r.depth
	r.mu.Unlock()
	attrs := []slog.Attr{slog.String("move", s.Move), slog.Int("depth", depth)}
	if s.Operand != nil {
		attrs = append(attrs, slog.String("operand", s.Operand.String()))
	}
	if s.Result != nil {
		attrs = append(attrs, slog.String("result", s.Result.String()))
	}
	if s.Note != "" {
		attrs = append(attrs, slog.String("note", s.Note))
	}
	r.Logger.LogAttrs(context.Background(), slog.LevelDebug, "solve step", attrs...)
}

func (r *LogRecorder) OpenBranch(n int) BranchHandle {
	r.mu.Lock()
	r.depth++
	depth := r.depth
	r.mu.Unlock()
	r.Logger.Debug("case split", "branches", n, "depth", depth)
	return &logBranch{r: r}
}

func (r *LogRecorder) CloseBranch() {
	r.mu.Lock()
	if r.depth > 0 {
		r.depth--
	}
	r.mu.Unlock()
}

type logBranch struct {
	r *LogRecorder
	i int
}

func (b *logBranch) Next() {
	b.i++
	b.r.Logger.Debug("branch", "index", b.i)
}

// MemoryRecorder keeps the trace as indented lines for display.
type MemoryRecorder struct {
	mu    sync.Mutex
	lines []string
	depth int
}

func (m *MemoryRecorder) Record(s Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, strings.Repeat("  ", m.depth)+s.String())
}

func (m *MemoryRecorder) OpenBranch(n int) BranchHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, strings.Repeat("  ", m.depth)+fmt.Sprintf("split into %d cases", n))
	m.depth++
	return &memoryBranch{m: m}
}

func (m *MemoryRecorder) CloseBranch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth > 0 {
		m.depth--
	}
}

// Lines returns the recorded trace.
func (m *MemoryRecorder) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func (m *MemoryRecorder) Render() string { return strings.Join(m.Lines(), "\n") }

type memoryBranch struct {
	m *MemoryRecorder
	i int
}

func (b *memoryBranch) Next() {
	b.i++
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	b.m.lines = append(b.m.lines, strings.Repeat("  ", b.m.depth-1)+fmt.Sprintf("case %d:", b.i))
}
