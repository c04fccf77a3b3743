package condition

import "strings"

// Classifier maps a move's free-text effect description to the Status it can
// inflict, or None. Classification never rolls; the Engine does that.
type Classifier interface {
	Classify(effect string) Status
}

// ClassifierFunc adapts a function into a Classifier.
type ClassifierFunc func(effect string) Status

// Classify calls f.
func (f ClassifierFunc) Classify(effect string) Status { return f(effect) }

// KeywordClassifier matches the "paralyze", "burn" and "poison" keywords as
// case-insensitive substrings, in that priority order.
type KeywordClassifier struct{}

// Classify returns the first Status whose keyword occurs in effect.
//
// Postcondition: Returns None when effect is empty or matches no keyword.
func (KeywordClassifier) Classify(effect string) Status {
	lower := strings.ToLower(effect)
	for _, d := range defs {
		if strings.Contains(lower, d.Keyword) {
			return d.Status
		}
	}
	return None
}
