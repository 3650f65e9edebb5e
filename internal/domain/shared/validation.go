package shared

import "strings"

// Violation is one reason a command was refused
type Violation struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ValidationResult collects every violation found by a guard.
// A zero value is a passing result.
type ValidationResult struct {
	violations []Violation
}

// Pass returns an empty, passing result
func Pass() ValidationResult {
	return ValidationResult{}
}

// Add records a violation
func (r *ValidationResult) Add(code, field, message string) {
	r.violations = append(r.violations, Violation{Code: code, Field: field, Message: message})
}

// AddWithData records a violation carrying structured detail
func (r *ValidationResult) AddWithData(code, field, message string, data any) {
	r.violations = append(r.violations, Violation{Code: code, Field: field, Message: message, Data: data})
}

// Merge appends other's violations
func (r *ValidationResult) Merge(other ValidationResult) {
	r.violations = append(r.violations, other.violations...)
}

// OK reports whether no violation was recorded
func (r ValidationResult) OK() bool {
	return len(r.violations) == 0
}

// Violations returns a copy of the recorded violations
func (r ValidationResult) Violations() []Violation {
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Messages returns the human-readable messages in order
func (r ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.violations))
	for _, v := range r.violations {
		out = append(out, v.Message)
	}
	return out
}

// HasCode reports whether a violation with the given code was recorded
func (r ValidationResult) HasCode(code string) bool {
	for _, v := range r.violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// String joins all messages
func (r ValidationResult) String() string {
	return strings.Join(r.Messages(), "; ")
}
