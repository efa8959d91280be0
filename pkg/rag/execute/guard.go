package execute

import (
	"fmt"
	"regexp"
	"strings"
)

// The guard runs regardless of what the generator already checked: defense
// in depth against prompt injection or model drift. Any match is a hard
// rejection, never a sanitize-and-continue.

var mutatingKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE", "EXEC", "EXECUTE",
}

var dangerousProcedures = []string{
	"XP_CMDSHELL", "SP_EXECUTESQL", "XP_REGREAD", "XP_REGWRITE", "SP_CONFIGURE", "XP_DIRTREE",
}

// separatorThenMutation matches a statement separator followed (anywhere
// later) by a mutating keyword, e.g. "SELECT 1; DROP TABLE x".
var separatorThenMutation = regexp.MustCompile(
	`(?is);\s*.*?\b(` + strings.Join(mutatingKeywords, "|") + `)\b`,
)

// ValidateReadOnly rejects anything that is not a single plain SELECT.
func ValidateReadOnly(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}

	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Errorf("only SELECT statements are allowed")
	}

	// Strip the single permitted trailing terminator before scanning for a
	// separator that could chain a second statement.
	body := strings.TrimSuffix(trimmed, ";")

	if separatorThenMutation.MatchString(body + ";") {
		return fmt.Errorf("statement separator followed by a mutating keyword")
	}

	upper := strings.ToUpper(body)
	for _, proc := range dangerousProcedures {
		if strings.Contains(upper, proc) {
			return fmt.Errorf("dangerous procedure reference: %s", proc)
		}
	}

	// Inline comments can hide a second statement from naive scanners.
	if strings.Contains(body, "--") || strings.Contains(body, "/*") {
		return fmt.Errorf("inline comment sequences are not allowed")
	}

	// A separator anywhere inside the body means a chained statement even if
	// the tail is not a recognized mutation.
	if strings.Contains(body, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	return nil
}
