// Package validation provides field-keyed validation errors. All violations
// of a request are collected into one Errors value before it is surfaced, so
// clients see every failing field at once.
package validation

import (
	"sort"
	"strings"
)

// Errors maps a field name to a human-readable message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(e[field])
	}
	return b.String()
}

func (e Errors) Add(field, message string) {
	e[field] = message
}

// OrNil returns the receiver as an error, or nil when no field failed.
// A typed nil map must not be returned as a non-nil error value.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
