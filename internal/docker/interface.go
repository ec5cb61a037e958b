package docker

import (
	"context"
	"io"
	"net"
	"net/url"

	"github.com/moby/moby/client"
)

// Request describes one call to the engine API. Path is relative to the
// versioned API root, e.g. "/containers/create".
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
}

// Transport performs a request, copying the response body into body as it
// arrives, and returns the status code once the transfer has finished.
//
// A failure to write into body aborts the transfer and is returned as the
// error; the status code is then meaningless.
//
// Usage:
//
//	// Production code: HTTP over the daemon socket
//	transport, err := docker.NewHTTPTransport(nil, "unix:///var/run/docker.sock", "1.47")
//	if err != nil {
//	    return err
//	}
//	c := docker.NewClient(transport)
//
//	// Test code: inject a mock
//	type mockTransport struct{}
//	func (m *mockTransport) Do(...) (int, error) { /* write a canned body */ }
//	c := docker.NewClient(&mockTransport{})
type Transport interface {
	Do(ctx context.Context, req Request, body io.Writer) (int, error)
}

// Daemon is the part of the moby client used to locate the engine and agree
// on an API version. *client.Client implements it.
type Daemon interface {
	Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	Dialer() func(context.Context) (net.Conn, error)
	DaemonHost() string
	ClientVersion() string
	Close() error
}
