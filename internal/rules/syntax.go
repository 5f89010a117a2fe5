package rules

import (
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/joescharf/cra/internal/models"
)

// GoSyntax parses .go files and reports the first syntax error as a
// finding. Other languages are a no-op; no parser integration exists for
// them.
type GoSyntax struct{}

func (GoSyntax) ID() string { return "GO_SYNTAX_ERROR" }

func (GoSyntax) Check(filename, _, content string) []Finding {
	if !strings.HasSuffix(filename, ".go") {
		return nil
	}

	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, filename, content, 0)
	if err == nil {
		return nil
	}

	f := Finding{
		RuleID:   "GO_SYNTAX_ERROR",
		Severity: models.SeverityError,
		Message:  err.Error(),
	}
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		first := list[0]
		f.Message = first.Msg
		if first.Pos.IsValid() {
			f.Line = lineNo(first.Pos.Line)
		}
	}
	return []Finding{f}
}
