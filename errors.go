package dnd

import "errors"

var (
	// ErrActivationRejected is returned when an activation constraint is not
	// met within its delay or tolerance. No session state changes.
	ErrActivationRejected = errors.New("dnd: activation rejected")

	// ErrMeasurementUnavailable is returned by a Node whose backing element is
	// no longer connected.
	ErrMeasurementUnavailable = errors.New("dnd: measurement unavailable")

	// ErrMutationFailed wraps a durable persistence failure after the local
	// change has been rolled back.
	ErrMutationFailed = errors.New("dnd: mutation failed")

	// ErrConcurrentSession is returned when a drag starts while another
	// session is still open.
	ErrConcurrentSession = errors.New("dnd: drag session already active")

	// ErrNoSession is returned by session operations when nothing is being dragged.
	ErrNoSession = errors.New("dnd: no active drag session")

	// ErrUnknownItem is returned for ids that are not on the board or not registered.
	ErrUnknownItem = errors.New("dnd: unknown item")

	// ErrUnknownContainer is returned for container ids that are not on the board.
	ErrUnknownContainer = errors.New("dnd: unknown container")

	// ErrUnknownUndo is returned by Undo for entries that expired or never existed.
	ErrUnknownUndo = errors.New("dnd: unknown or expired undo entry")
)
