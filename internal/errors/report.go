package errors

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/mini-lang/minic/internal/ast"
)

// Fix is an optional suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the structured diagnostic every phase of the pipeline
// produces: module resolution, the type checker, and the flow analyses
// all return *Report values (wrapped as errors for fatal ones, collected
// directly for warnings).
type Report struct {
	Schema  string         `json:"schema"` // always "mini.diagnostic/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     ast.Pos        `json:"pos"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As
// unwrapping through ordinary Go error-handling code.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a *Report from an error chain, if one is present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders a Report as deterministic JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewGeneric wraps an arbitrary Go error as a Report for a phase that
// has no more specific diagnostic to produce.
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  "mini.diagnostic/v1",
		Code:    "GENERIC",
		Phase:   phase,
		Message: err.Error(),
	}
}

// Sink accumulates diagnostics across an entire function or module so
// that one pass's failures don't abort analysis of independent
// functions (§5's failure-isolation rule): a type error in one function
// still lets every other function in the module get checked, flow-
// analyzed, and reported in a single batch.
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a diagnostic to the sink.
func (s *Sink) Add(r *Report) {
	if r != nil {
		s.reports = append(s.reports, r)
	}
}

// Errors returns the error-severity reports the sink has collected.
func (s *Sink) Errors() []*Report {
	var out []*Report
	for _, r := range s.reports {
		if !IsWarning(r.Code) {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns the warning-severity reports the sink has collected.
func (s *Sink) Warnings() []*Report {
	var out []*Report
	for _, r := range s.reports {
		if IsWarning(r.Code) {
			out = append(out, r)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if !IsWarning(r.Code) {
			return true
		}
	}
	return false
}

// Sorted returns all collected reports ordered by source position, then
// by code, for deterministic output.
func (s *Sink) Sorted() []*Report {
	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return out[i].Code < out[j].Code
	})
	return out
}
