// Package debug provides optional file-based debug logging.
//
// When the DND_DEBUG environment variable is set to a file path, debug
// messages are appended to that file as JSON lines through a rotating
// writer. Otherwise, logging is a no-op.
package debug
