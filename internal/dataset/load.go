package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Loader reads dataset files. The zero value is ready to use and logs nothing.
type Loader struct {
	Logger *zap.Logger
}

// NewLoader returns a Loader that logs problems to logger at debug level.
func NewLoader(logger *zap.Logger) Loader {
	return Loader{Logger: logger}
}

func (l Loader) log() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l Loader) report(problems []Problem, p Problem) []Problem {
	l.log().Debug("dataset problem",
		zap.String("path", p.Path),
		zap.Int("line", p.Line),
		zap.String("kind", string(p.Kind)),
		zap.String("message", p.Message),
	)
	return append(problems, p)
}

// readFile returns the file content, or a problem when it cannot be read.
func (l Loader) readFile(path string) ([]byte, *Problem) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &Problem{Path: path, Kind: ProblemMissing, Message: "file not found"}
	}
	if err != nil {
		return nil, &Problem{Path: path, Kind: ProblemRead, Message: err.Error()}
	}
	return data, nil
}

// JSONL loads a newline-delimited JSON file. Blank lines are skipped. A line
// that does not decode into T is reported with its 1-based line number and
// dropped; every other line is still loaded.
func JSONL[T any](l Loader, path string) ([]T, []Problem) {
	data, problem := l.readFile(path)
	if problem != nil {
		return []T{}, l.report(nil, *problem)
	}
	records, problems := ParseJSONL[T](l, path, data)
	l.log().Debug("loaded jsonl",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("problems", len(problems)),
	)
	return records, problems
}

// ParseJSONL decodes newline-delimited JSON already in memory.
// path is used only to label problems.
func ParseJSONL[T any](l Loader, path string, data []byte) ([]T, []Problem) {
	records := []T{}
	var problems []Problem

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			problems = l.report(problems, Problem{
				Path:    path,
				Line:    i + 1,
				Kind:    ProblemParse,
				Message: err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	return records, problems
}

// JSON loads a file holding a single JSON array. Any decode failure discards
// the whole file: there is no partial recovery for this format.
func JSON[T any](l Loader, path string) ([]T, []Problem) {
	data, problem := l.readFile(path)
	if problem != nil {
		return []T{}, l.report(nil, *problem)
	}
	records, problems := ParseJSON[T](l, path, data)
	l.log().Debug("loaded json",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("problems", len(problems)),
	)
	return records, problems
}

// ParseJSON decodes a JSON array already in memory.
func ParseJSON[T any](l Loader, path string, data []byte) ([]T, []Problem) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return []T{}, l.report(nil, Problem{
			Path:    path,
			Kind:    ProblemParse,
			Message: fmt.Sprintf("expected a JSON array: %v", err),
		})
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
