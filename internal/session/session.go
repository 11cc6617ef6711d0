package session

// Session is the authentication state of one connection.
//
// It starts unauthenticated, becomes authenticated on the first accepted
// auth command, and never goes back. A Session belongs to exactly one
// connection goroutine and is not safe for concurrent use.
type Session struct {
	id            string
	authenticated bool
}

// New creates an unauthenticated session for the connection with the given id.
func New(id string) *Session {
	return &Session{id: id}
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.id
}

// Authenticated reports whether the session has presented a valid token.
func (s *Session) Authenticated() bool {
	return s.authenticated
}
