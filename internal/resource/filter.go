package resource

import (
	"fmt"
	"path"
	"strings"
)

// Term matches one property against glob patterns. A pattern list is
// comma-separated; a term matches when any of its patterns does.
type Term struct {
	Key      string
	Patterns []string
}

func (t Term) match(value string) bool {
	for _, pattern := range t.Patterns {
		if ok, err := path.Match(pattern, value); err == nil && ok {
			return true
		}
	}
	return false
}

// Filters is a conjunction of terms. Empty filters match everything.
type Filters []Term

// ParseFilters parses filter arguments. "key=glob[,glob...]" filters on a
// property; a bare argument filters on the name.
func ParseFilters(args ...string) (Filters, error) {
	filters := make(Filters, 0, len(args))
	for _, arg := range args {
		key, patterns, found := strings.Cut(arg, "=")
		if !found {
			key, patterns = "name", arg
		}
		key, patterns = strings.TrimSpace(key), strings.TrimSpace(patterns)
		if key == "" || patterns == "" {
			return nil, fmt.Errorf("malformed filter term %q", arg)
		}
		filters = append(filters, Term{
			Key:      key,
			Patterns: strings.Split(patterns, ","),
		})
	}
	return filters, nil
}

// MatchName evaluates only the name terms, the cheap pre-filter applied
// before a resource is loaded.
func (f Filters) MatchName(name string) bool {
	for _, term := range f {
		if term.Key == "name" && !term.match(name) {
			return false
		}
	}
	return true
}

// Match evaluates all terms against the resource. get returns the canonical
// string form of a property, or false for unknown ones.
func (f Filters) Match(get func(key string) (string, bool)) bool {
	for _, term := range f {
		value, ok := get(term.Key)
		if !ok || !term.match(value) {
			return false
		}
	}
	return true
}
