package internal

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// SessionLabel marks every resource the up workflow creates with its session.
const SessionLabel = "dockline.session"

type Session struct {
	id int64
}

// GenerateSession creates a new session with a random numeric identifier.
// The session is used to generate unique container and network names.
func GenerateSession() Session {
	return Session{id: rand.Int64N(10000)}
}

// String returns the string representation of the session, equivalent to calling ID().
func (s Session) String() string {
	return string(s.ID())
}

// ID returns the session identifier in the format "dockline-<number>".
// This is used as the Docker container name.
func (s Session) ID() SessionID {
	return SessionID(fmt.Sprintf("dockline-%d", s.id))
}

// Network returns the name of the session's network, "dockline-<number>-net".
func (s Session) Network() string {
	return fmt.Sprintf("dockline-%d-net", s.id)
}

// Labels returns the labels attached to the session's resources.
func (s Session) Labels() map[string]string {
	return map[string]string{SessionLabel: strconv.FormatInt(s.id, 10)}
}
