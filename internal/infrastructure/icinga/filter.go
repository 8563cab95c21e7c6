package icinga

import "strings"

// Filter expression helpers. Icinga2 filter expressions are boolean
// predicates over object attributes; object names flow into them as quoted
// string literals, so every value passes through QuoteString to keep names
// containing quotes or backslashes from breaking the expression.

// QuoteString renders s as an Icinga2 string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Eq builds an attribute equality predicate, e.g. `host.name=="web01"`.
func Eq(attr, value string) string {
	return attr + "==" + QuoteString(value)
}

// Match builds a wildcard match predicate, e.g. `match("*web*", host.name)`.
// The pattern is quoted like any other value.
func Match(pattern, attr string) string {
	return "match(" + QuoteString(pattern) + ", " + attr + ")"
}

// And combines expressions conjunctively. Zero expressions yield the empty
// string; a single expression is returned as-is.
func And(exprs ...string) string {
	return combine(exprs, " && ")
}

// Or combines expressions disjunctively.
func Or(exprs ...string) string {
	return combine(exprs, " || ")
}

func combine(exprs []string, op string) string {
	switch len(exprs) {
	case 0:
		return ""
	case 1:
		return exprs[0]
	}
	return "( " + strings.Join(exprs, op) + " )"
}
