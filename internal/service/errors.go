package service

import "errors"

// ValidationError rejects an operation before any state is mutated.
type ValidationError struct {
	Rule string
}

func (e *ValidationError) Error() string { return e.Rule }

// GuardViolation reports a rule that turned the operation into a no-op, such
// as settling an already-settled receivable. Callers may treat it as a
// reported reason rather than a failure.
type GuardViolation struct {
	Rule string
}

func (e *GuardViolation) Error() string { return e.Rule }

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsGuardViolation reports whether err is a guarded no-op.
func IsGuardViolation(err error) bool {
	var g *GuardViolation
	return errors.As(err, &g)
}
