package logging

import (
	"fmt"
	"runtime/debug"
)

// RecoveryHandler converts panics into errors with a logged stack trace.
// The validation loop uses it so a panic during persist/compile/execute
// consumes one attempt instead of killing the process.
type RecoveryHandler struct {
	Component string
	logger    *Logger
}

// NewRecoveryHandler creates a recovery handler for a component.
func NewRecoveryHandler(component string) *RecoveryHandler {
	return &RecoveryHandler{
		Component: component,
		logger:    New(component),
	}
}

// WrapError executes fn, returning an error on panic.
func (r *RecoveryHandler) WrapError(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := string(debug.Stack())
			r.logger.Error("panic_recovered", map[string]any{
				"stack": stack,
			}, fmt.Errorf("%v", rec))
			err = fmt.Errorf("panic in %s: %v", r.Component, rec)
		}
	}()
	return fn()
}
