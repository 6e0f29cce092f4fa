package store

import "strings"

// formatTextArray renders a Postgres text[] literal. Values are quoted
// so commas and braces in author names survive the round trip.
func formatTextArray(values []string) string {
	if len(values) == 0 {
		return "{}"
	}

	quoted := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		quoted[i] = `"` + v + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// parseTextArray parses a Postgres text[] literal produced by the
// driver. Handles quoted and unquoted elements.
func parseTextArray(literal string) []string {
	literal = strings.TrimSpace(literal)
	if len(literal) < 2 || literal[0] != '{' || literal[len(literal)-1] != '}' {
		return nil
	}
	inner := literal[1 : len(literal)-1]
	if inner == "" {
		return nil
	}

	var (
		values  []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range inner {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	values = append(values, current.String())
	return values
}
