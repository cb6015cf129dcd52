package dataset

import "fmt"

// ProblemKind classifies a load-time problem.
type ProblemKind string

const (
	ProblemMissing   ProblemKind = "missing"   // file does not exist
	ProblemRead      ProblemKind = "read"      // file exists but could not be read
	ProblemParse     ProblemKind = "parse"     // malformed line or document
	ProblemIntegrity ProblemKind = "integrity" // well-formed but unusable reference entry
)

// Problem is a load-time issue. Problems are advisory: they never abort a run.
type Problem struct {
	Path    string      `json:"path"`
	Line    int         `json:"line,omitempty"` // 1-based; 0 when the problem concerns the whole file
	Kind    ProblemKind `json:"kind"`
	Message string      `json:"message"`
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", p.Path, p.Line, p.Kind, p.Message)
	}
	return fmt.Sprintf("%s: %s: %s", p.Path, p.Kind, p.Message)
}
