package usecase

import "fmt"

// The pipeline's error taxonomy. Validation and not-found errors are
// raised before any network call; remote and auth errors wrap whatever
// the transport returned. All four are surfaced to the user as
// notifications at the mutation boundary; they never bubble up as
// unhandled panics.

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// RemoteError covers network failures and unexpected response statuses.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AuthError means the credential was rejected. Unlike the other three it
// poisons every subsequent call, so the pipeline triggers a session
// reset when it sees one.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
