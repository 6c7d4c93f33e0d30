package core

import "errors"

var (
	// ErrNameTaken reports that the requested username is already bound
	// to another session. Recoverable: the session stays in handshake.
	ErrNameTaken = errors.New("username already taken")

	// ErrSessionClosed reports a send or register attempt against a
	// session that has reached its terminal state.
	ErrSessionClosed = errors.New("session closed")

	// ErrSlowConsumer reports that a recipient's outbound queue is full.
	// The delivery is dropped for that recipient only.
	ErrSlowConsumer = errors.New("outbound queue full")
)
