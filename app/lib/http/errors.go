package http

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInternal       = errors.New("internal error")
	ErrNotImplemented = errors.New("not implemented")
)

var (
	ErrInvalidEscape = fmt.Errorf("%w: invalid percent-encoding", ErrBadRequest)
	ErrNulByte       = fmt.Errorf("%w: decoded path contains a nul byte", ErrBadRequest)
	ErrEscapesRoot   = fmt.Errorf("%w: path escapes the root", ErrBadRequest)
	ErrPathTooLong   = fmt.Errorf("%w: path too long", ErrBadRequest)
	ErrUnknownUser   = fmt.Errorf("%w: unknown user", ErrNotFound)
)

// StatusForError maps a failure from any stage of the pipeline to the status
// sent on the wire.
func StatusForError(err error) Status {
	switch {
	case errors.Is(err, ErrBadRequest):
		return Status400BadRequest
	case errors.Is(err, ErrForbidden):
		return Status403Forbidden
	case errors.Is(err, ErrNotFound):
		return Status404NotFound
	case errors.Is(err, ErrNotImplemented):
		return Status501NotImplemented
	}
	return Status500InternalServerError
}

func StatusForOutcome(o ParseOutcome) Status {
	switch o {
	case ParseOk:
		return Status200OK
	case ParseInvalidMethod:
		return Status501NotImplemented
	}
	return Status400BadRequest
}
