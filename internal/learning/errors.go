package learning

import (
	"context"
	"errors"
	"net"

	"github.com/abhisek/adaptlearn/internal/api"
)

// ErrStale is returned by an orchestrator whose response was dropped because
// a newer call or a domain change superseded it.
var ErrStale = errors.New("stale response dropped")

// ErrorMessage reduces err to the single line shown in the error banner.
// A server-supplied message wins over everything else.
func ErrorMessage(err error) string {
	var (
		serr   *api.ServerError
		terr   *api.TransportError
		verr   *api.ValidationError
		netErr net.Error
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &serr):
		return serr.Error()
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out"
	case errors.As(err, &terr):
		return "Network error: the server could not be reached"
	case errors.As(err, &verr):
		return "Unexpected response from the server"
	default:
		return err.Error()
	}
}
