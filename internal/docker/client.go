package docker

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockline/internal/stream"
)

type Client struct {
	transport Transport
	daemon    Daemon
}

// NewClient creates a Client that sends every request through transport.
func NewClient(transport Transport) Client {
	return Client{
		transport: transport,
	}
}

// NewDefaultClient locates the daemon the way the docker CLI does (DOCKER_HOST
// and friends, then the default socket), applies opts on top, and returns a
// Client speaking the daemon's API version.
func NewDefaultClient(ctx context.Context, version string, opts ...client.Opt) (Client, error) {
	opts = append([]client.Opt{client.FromEnv}, opts...)
	if version == "" {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}

	cli, err := client.New(opts...)
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	c, err := NewClientFromDaemon(ctx, cli, version)
	if err != nil {
		cli.Close()
		return Client{}, err
	}
	return c, nil
}

// NewClientFromDaemon builds the HTTP transport from an existing moby client.
// An empty version means the one the daemon reports through ping.
func NewClientFromDaemon(ctx context.Context, daemon Daemon, version string) (Client, error) {
	if version == "" {
		ping, err := daemon.Ping(ctx, client.PingOptions{})
		if err != nil {
			return Client{}, fmt.Errorf("failed to ping docker daemon at %q: %w\nMake sure Docker is installed and running (try 'docker ps')", daemon.DaemonHost(), err)
		}
		version = ping.APIVersion
	}
	if version == "" {
		version = daemon.ClientVersion()
	}

	transport, err := NewHTTPTransport(dialerClient(daemon.Dialer()), daemon.DaemonHost(), version)
	if err != nil {
		return Client{}, err
	}

	c := NewClient(transport)
	c.daemon = daemon
	return c, nil
}

// dialerClient routes every connection through the moby client's dialer, so
// the transport reaches the same socket or address the daemon was found on.
func dialerClient(dial func(context.Context) (net.Conn, error)) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dial(ctx)
			},
		},
	}
}

// Close releases the daemon connection, if the client owns one.
func (c Client) Close() {
	if c.daemon != nil {
		c.daemon.Close()
	}
}

// streamed performs req with a streaming decoder in front of sink.
func (c Client) streamed(ctx context.Context, req Request, sink io.Writer) (int, stream.State, error) {
	decoder := stream.NewStreamingDecoder(sink)
	status, err := c.transport.Do(ctx, req, decoder)
	return status, decoder.State(), err
}

// accumulated performs req with an accumulating decoder in front of sink.
func (c Client) accumulated(ctx context.Context, req Request, sink io.Writer) (int, *stream.AccumulatingDecoder, error) {
	decoder := stream.NewAccumulatingDecoder(sink)
	status, err := c.transport.Do(ctx, req, decoder)
	return status, decoder, err
}

// Ping checks that the daemon answers on its API.
func (c Client) Ping(ctx context.Context) error {
	status, decoder, err := c.accumulated(ctx, Request{Method: http.MethodGet, Path: "/_ping"}, nil)
	if err != nil {
		return fmt.Errorf("failed to ping docker daemon: %w", err)
	}
	return classifyPing(status, decoder)
}
