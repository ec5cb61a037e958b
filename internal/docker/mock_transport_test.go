package docker_test

import (
	"context"
	"errors"
	"io"

	"github.com/ryanmoran/dockline/internal/docker"
)

// mockTransport is a mock implementation of docker.Transport for testing
type mockTransport struct {
	doFunc   func(ctx context.Context, req docker.Request, body io.Writer) (int, error)
	requests []docker.Request
}

func (m *mockTransport) Do(ctx context.Context, req docker.Request, body io.Writer) (int, error) {
	m.requests = append(m.requests, req)
	if m.doFunc != nil {
		return m.doFunc(ctx, req, body)
	}
	return 0, errors.New("not implemented")
}

func (m *mockTransport) lastRequest() docker.Request {
	if len(m.requests) == 0 {
		return docker.Request{}
	}
	return m.requests[len(m.requests)-1]
}

// respond returns a doFunc writing each chunk to the body in turn, the way
// the HTTP transport hands over a response as it arrives.
func respond(status int, chunks ...string) func(context.Context, docker.Request, io.Writer) (int, error) {
	return func(_ context.Context, _ docker.Request, body io.Writer) (int, error) {
		for _, chunk := range chunks {
			if _, err := body.Write([]byte(chunk)); err != nil {
				return status, err
			}
		}
		return status, nil
	}
}

func newMockClient(status int, chunks ...string) (docker.Client, *mockTransport) {
	transport := &mockTransport{doFunc: respond(status, chunks...)}
	return docker.NewClient(transport), transport
}
