package docker

import (
	"errors"
	"fmt"
	"strings"
)

// Op names the API operation an error came from. It reads as the object of
// "failed to".
type Op string

const (
	OpCreateContainer  Op = "create container"
	OpStartContainer   Op = "start container"
	OpStopContainer    Op = "stop container"
	OpKillContainer    Op = "kill container"
	OpRemoveContainer  Op = "remove container"
	OpInspectContainer Op = "inspect container"
	OpWaitContainer    Op = "wait for container"
	OpAttachContainer  Op = "attach to container"
	OpContainerLogs    Op = "read logs of container"
	OpResizeContainer  Op = "resize container"
	OpBuildImage       Op = "build image"
	OpPullImage        Op = "pull image"
	OpRemoveImage      Op = "remove image"
	OpPruneImages      Op = "prune images"
	OpCreateNetwork    Op = "create network"
	OpConnectNetwork   Op = "connect network"
	OpRemoveNetwork    Op = "remove network"
	OpInspectNetwork   Op = "inspect network"
	OpPing             Op = "ping daemon"
)

// Kind classifies a non-success response.
type Kind int

const (
	// KindFailed is the operation's generic failure. Message carries the
	// daemon's explanation when it sent one.
	KindFailed Kind = iota
	KindNotFound
	KindAlreadyExists
	KindBadParameter
	KindConflict
	KindServer
	KindNotSupported
	KindDaemon
	KindUnknown
)

var (
	ErrFailed        = errors.New("operation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadParameter  = errors.New("bad parameter")
	ErrConflict      = errors.New("conflict")
	ErrServer        = errors.New("server error")
	ErrNotSupported  = errors.New("operation not supported")
	ErrDaemon        = errors.New("daemon error")
	ErrUnknown       = errors.New("unknown error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindAlreadyExists:
		return ErrAlreadyExists
	case KindBadParameter:
		return ErrBadParameter
	case KindConflict:
		return ErrConflict
	case KindServer:
		return ErrServer
	case KindNotSupported:
		return ErrNotSupported
	case KindDaemon:
		return ErrDaemon
	case KindUnknown:
		return ErrUnknown
	default:
		return ErrFailed
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// Error is a classified non-success response from the engine.
//
// Use errors.Is with the Err* sentinels to test the kind, and errors.As to
// reach the status code and the daemon's message.
type Error struct {
	Op         Op
	Kind       Kind
	StatusCode int

	// ID is the id or name the request addressed, if any.
	ID string
	// Container is the second resource of a two-resource request, such as
	// the container being connected to a network.
	Container string

	// Message is the daemon's own explanation, taken from an "error" or
	// "message" field of the response.
	Message string
	// Body is the raw response body, kept for operations whose error
	// bodies are parsed only after the status code is known.
	Body string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to %s", e.Op)
	if e.ID != "" {
		fmt.Fprintf(&b, " %q", e.ID)
	}
	if e.Container != "" {
		fmt.Fprintf(&b, " for container %q", e.Container)
	}
	if e.Kind != KindFailed {
		fmt.Fprintf(&b, ": %s", e.Kind)
	}

	switch {
	case e.Message != "":
		fmt.Fprintf(&b, ": %s", e.Message)
	case strings.TrimSpace(e.Body) != "":
		fmt.Fprintf(&b, ": %s", strings.TrimSpace(e.Body))
	}

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	return b.String()
}

// Unwrap exposes the kind's sentinel to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// IsNotFound reports whether err is a not-found response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
