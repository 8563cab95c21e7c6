package chat

import "fmt"

// BackendQueryError marks a failed monitoring backend call. It is never
// fatal to the process: conversations surface it as an error response and
// abort only the current resolution or dispatch step.
type BackendQueryError struct {
	Err error
}

func (e *BackendQueryError) Error() string {
	return fmt.Sprintf("backend query failed: %v", e.Err)
}

func (e *BackendQueryError) Unwrap() error { return e.Err }

// FilterSyntaxError marks unrecognized filter keywords in a one-shot status
// query.
type FilterSyntaxError struct {
	Tokens []string
}

func (e *FilterSyntaxError) Error() string {
	return fmt.Sprintf("unrecognized filter keywords: %v", e.Tokens)
}
