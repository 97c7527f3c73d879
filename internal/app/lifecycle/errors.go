// internal/app/lifecycle/errors.go
package lifecycle

import "errors"

// Error taxonomy for lifecycle operations. The engine returns typed
// results only; it never panics across the store boundary. Callers match
// with errors.Is so wrapped detail messages stay intact.
//
//   - ErrValidation: malformed input (non-positive payment, bad deadline option)
//   - ErrForbidden: the actor lacks the role the event requires
//   - ErrInvalidTransition: the event is illegal in the current status
//   - ErrNotAMember: the actor failed the group-membership check
//   - ErrConflict: an optimistic write lost; the caller retries
//   - ErrTerminal: the request is closed (completed or cancelled)
var (
	ErrValidation        = errors.New("invalid input")
	ErrForbidden         = errors.New("not allowed for this user")
	ErrInvalidTransition = errors.New("action not allowed in the current status")
	ErrNotAMember        = errors.New("not a member of this group")
	ErrConflict          = errors.New("request was modified concurrently")
	ErrTerminal          = errors.New("this request is closed")
)
