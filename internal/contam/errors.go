package contam

import "fmt"

// ValidationError reports a record or hypothesis built from invalid values.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DomainError reports a probability or contamination level outside the
// range the evaluator accepts.
type DomainError struct {
	Param string
	Value float64
	Range string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s %v outside of %s", e.Param, e.Value, e.Range)
}
