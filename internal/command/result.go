package command

// Result is the uniform outcome of a command handler. Data carries the
// structured payload rendering works from; Message is the human summary.
type Result struct {
	Success bool
	Message string
	Data    map[string]any

	// Display, when set, is the handler's explicit vote on whether a
	// conditional command renders its full view this time. Nil means
	// "no opinion"; rendering then falls back to the definition's
	// DisplayCondition.
	Display *bool
}

// OK builds a successful result.
func OK(data map[string]any, message string) *Result {
	return &Result{Success: true, Data: data, Message: message}
}

// Fail builds a failed result with a user-facing message.
func Fail(message string) *Result {
	return &Result{Success: false, Message: message}
}

// WithDisplay sets the explicit display vote and returns the result for
// chaining at the end of a handler.
func (r *Result) WithDisplay(show bool) *Result {
	r.Display = &show
	return r
}

// ShouldDisplay resolves the display decision for a conditional command:
// the explicit vote wins, then the definition's condition over the payload,
// then false.
func (r *Result) ShouldDisplay(def *Definition) bool {
	if r.Display != nil {
		return *r.Display
	}
	if def != nil && def.DisplayCondition != nil {
		return def.DisplayCondition(r.Data)
	}
	return false
}
