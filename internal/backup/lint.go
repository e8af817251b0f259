package backup

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

const lintFilename = "backup.json"

// Problem is one schema violation found by Lint.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// String renders the problem on one line.
func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", p.Line, p.Path, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.Path, p.Message)
}

// Lint checks raw against the backup schema and returns every problem found.
// It does not stop at the first one. A nil slice means the backup is clean.
//
// Lint is stricter than Decode: a negative delivery threshold, for example,
// is silently treated as unknown on import but reported here.
//
// The only error returned is a *ParseError for input that is not JSON.
func Lint(raw []byte) ([]Problem, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ParseError{Err: err}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile backup schema: %w", err)
	}

	// JSON is valid CUE.
	data := ctx.CompileBytes(raw, cue.Filename(lintFilename))
	if err := data.Err(); err != nil {
		return nil, &ParseError{Err: err}
	}

	var def string
	switch data.IncompleteKind() {
	case cue.ListKind:
		def = "#Legacy"
	case cue.StructKind:
		def = "#Versioned"
	default:
		return []Problem{{
			Path:    "",
			Message: "expected an array of stores or an object with a stores array",
		}}, nil
	}

	unified := schema.LookupPath(cue.ParsePath(def)).Unify(data)
	err := unified.Validate(cue.Concrete(true), cue.All())
	if err == nil {
		return nil, nil
	}
	return toProblems(err), nil
}

func toProblems(err error) []Problem {
	errs := errors.Errors(err)
	problems := make([]Problem, 0, len(errs))
	seen := make(map[string]bool, len(errs))

	for _, e := range errs {
		format, args := e.Msg()
		p := Problem{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range errors.Positions(e) {
			if pos.Filename() == lintFilename {
				p.Line = pos.Line()
				break
			}
		}

		key := p.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		problems = append(problems, p)
	}

	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Path < problems[j].Path
	})
	return problems
}
