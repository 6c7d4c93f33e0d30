package core

// LineConn abstracts a bidirectional line-oriented text channel owned
// exclusively by one session. The TCP transport provides the production
// implementation; tests substitute an in-memory one.
type LineConn interface {
	// ReadLine blocks until a full line is available or the connection
	// drops. The returned line carries no terminator.
	ReadLine() (string, error)

	// WriteLine sends a single line, appending the terminator. A line is
	// written atomically with respect to other WriteLine calls as long as
	// callers serialize, which the session's writer goroutine guarantees.
	WriteLine(line string) error

	// Close releases the channel and unblocks pending reads and writes.
	// Safe to call more than once and concurrently with ReadLine/WriteLine.
	Close() error

	// RemoteAddr identifies the peer for logging.
	RemoteAddr() string
}
