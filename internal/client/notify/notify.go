// Package notify carries user-visible notices out of the client core.
// The presentation layer decides how to show them.
package notify

import "sync"

// Kind classifies a notice.
type Kind int

const (
	// InvalidCredentials: the login probe was rejected with 401.
	InvalidCredentials Kind = iota + 1
	// LoginFailed: the login probe could not complete.
	LoginFailed
	// SessionExpired: an authenticated call returned 401 and the session was torn down.
	SessionExpired
	// ValidationFailed: a local precondition failed, nothing was sent.
	ValidationFailed
	// GenerateFailed: the recommendation request failed.
	GenerateFailed
	// RequestFailed: a collection call failed and the mirror is unchanged.
	RequestFailed
)

var kindNames = map[Kind]string{
	InvalidCredentials: "invalid_credentials",
	LoginFailed:        "login_failed",
	SessionExpired:     "session_expired",
	ValidationFailed:   "validation_failed",
	GenerateFailed:     "generate_failed",
	RequestFailed:      "request_failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Notice is one message for the user.
type Notice struct {
	Kind    Kind
	Message string
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f(n).
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Recorder keeps every notice it receives. Handy in tests and for shells that
// drain notices after each command.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify appends n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Drain returns the recorded notices and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Kinds returns the kinds recorded so far without draining.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.notices))
	for _, n := range r.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}
