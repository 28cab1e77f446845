package report

import (
	"cmp"
	"fmt"
	"go/token"
	"io"
	"slices"
	"sync"

	"github.com/sirkon/qualflow/internal/rules"
)

// Collector collects findings discovered during analysis.
type Collector struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase    Phase
	RuleCode rules.Rule
	Pos      token.Pos
	Message  string
	Details  any
}

// Phase marks the analysis stage where a report was generated.
type Phase int

const (
	_          Phase = iota
	PhaseBuild       // IR translation and control flow graph construction
	PhaseCheck       // use sites checks against refined qualifiers
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseCheck:
		return "check"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// Phased binds a Collector to a fixed phase.
// It is used during an entire analysis stage to record rule violations
// without specifying the phase repeatedly.
type Phased struct {
	parent *Collector
	phase  Phase
}

// Phase returns a phase-bound reporter that automatically
// sets the given phase for all reports produced through it.
func (c *Collector) Phase(p Phase) *Phased {
	return &Phased{parent: c, phase: p}
}

// Report adds a new record to the collector.
func (c *Collector) Report(rep Report) {
	c.mu.Lock()
	c.reports = append(c.reports, rep)
	c.mu.Unlock()
}

// Report records a new rule violation under the bound phase.
// Empty message is replaced with the rule description.
func (p *Phased) Report(rule rules.Rule, message string, pos token.Pos) {
	if message == "" {
		message = rule.Description()
	}
	p.parent.Report(Report{
		Phase:    p.phase,
		RuleCode: rule,
		Message:  message,
		Pos:      pos,
	})
}

// Reportf is Report with a formatted message.
func (p *Phased) Reportf(rule rules.Rule, pos token.Pos, format string, a ...any) {
	p.Report(rule, fmt.Sprintf(format, a...), pos)
}

// Reports returns a snapshot of all collected records.
func (c *Collector) Reports() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Sorted returns a snapshot ordered by position, then by rule.
func (c *Collector) Sorted() []Report {
	out := c.Reports()
	slices.SortStableFunc(out, func(a, b Report) int {
		if v := cmp.Compare(a.Pos, b.Pos); v != 0 {
			return v
		}
		return cmp.Compare(a.RuleCode, b.RuleCode)
	})
	return out
}

// PrintSummary prints all collected reports in a compact, human-readable form.
func (c *Collector) PrintSummary(w io.Writer, fset *token.FileSet) {
	for _, rep := range c.Sorted() {
		pos := fset.Position(rep.Pos)
		fmt.Fprintf(w, "[%s] %s - %s (%s:%d)\n",
			rep.Phase,
			rep.RuleCode,
			rep.Message,
			pos.Filename,
			pos.Line,
		)
	}
}
