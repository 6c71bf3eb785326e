package foundation

import (
	"fmt"
	"strings"
)

// defaultNormalizer provides standard string normalization.
func defaultNormalizer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Choice pairs the user-facing spelling of an enum value with the value itself.
type Choice[T comparable] struct {
	Name  string
	Value T
}

// Normalizer converts user input into a fixed set of enum values.
// Choices keep their declaration order so error messages list them the way
// they were declared.
type Normalizer[T comparable] struct {
	choices     []Choice[T]
	validValues map[string]T
}

// NewNormalizer creates a normalizer from an ordered list of choices.
func NewNormalizer[T comparable](choices ...Choice[T]) *Normalizer[T] {
	normalized := make(map[string]T, len(choices))
	for _, c := range choices {
		normalized[defaultNormalizer(c.Name)] = c.Value
	}
	return &Normalizer[T]{
		choices:     choices,
		validValues: normalized,
	}
}

// Normalize attempts to convert a string to the enum type.
func (n *Normalizer[T]) Normalize(raw string) (T, bool) {
	value, exists := n.validValues[defaultNormalizer(raw)]
	return value, exists
}

// NormalizeWithError attempts to convert a string to the enum type.
// Returns an error naming the valid values if the string is not recognized.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, ok := n.Normalize(raw); ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q (valid: %s)", raw, n.Names())
}

// Names lists the accepted spellings in declaration order, comma separated.
func (n *Normalizer[T]) Names() string {
	names := make([]string, 0, len(n.choices))
	for _, c := range n.choices {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// Values returns the enum values in declaration order.
func (n *Normalizer[T]) Values() []T {
	out := make([]T, 0, len(n.choices))
	for _, c := range n.choices {
		out = append(out, c.Value)
	}
	return out
}
