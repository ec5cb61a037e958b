package docker

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/moby/moby/client"
)

// DefaultHost is the daemon address used when none is configured.
const DefaultHost = client.DefaultDockerHost

// HTTPTransport sends requests to the engine over a unix socket or TCP.
type HTTPTransport struct {
	client  *http.Client
	baseURL string
	version string
}

// NewHTTPTransport creates a transport for host, which is a daemon address
// such as "unix:///var/run/docker.sock" or "tcp://10.0.0.5:2375". When
// httpClient is nil a client dialing host is built. The version, if set,
// prefixes every path ("1.47" becomes "/v1.47").
func NewHTTPTransport(httpClient *http.Client, host, version string) (HTTPTransport, error) {
	if host == "" {
		host = DefaultHost
	}

	u, err := client.ParseHostURL(host)
	if err != nil {
		return HTTPTransport{}, fmt.Errorf("failed to parse daemon host %q: %w\nUse a form like unix:///var/run/docker.sock or tcp://host:2375", host, err)
	}

	var baseURL string
	switch u.Scheme {
	case "unix":
		socketPath := u.Host
		if socketPath == "" {
			return HTTPTransport{}, fmt.Errorf("daemon host %q has no socket path", host)
		}
		if httpClient == nil {
			httpClient = unixSocketClient(socketPath)
		}
		// The socket dialer ignores the host part of the URL.
		baseURL = "http://docker"
	case "tcp", "http":
		baseURL = "http://" + u.Host + strings.TrimSuffix(u.Path, "/")
	case "https":
		baseURL = "https://" + u.Host + strings.TrimSuffix(u.Path, "/")
	default:
		return HTTPTransport{}, fmt.Errorf("unsupported daemon host scheme %q in %q\nSupported schemes are unix, tcp, http and https", u.Scheme, host)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	return HTTPTransport{
		client:  httpClient,
		baseURL: baseURL,
		version: version,
	}, nil
}

func unixSocketClient(socketPath string) *http.Client {
	dialer := &net.Dialer{}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", socketPath)
			},
		},
	}
}

// URL returns the absolute URL req is sent to.
func (t HTTPTransport) URL(req Request) string {
	var b strings.Builder
	b.WriteString(t.baseURL)
	if t.version != "" {
		b.WriteString("/")
		b.WriteString(t.version)
	}
	b.WriteString(req.Path)
	if len(req.Query) > 0 {
		b.WriteString("?")
		b.WriteString(req.Query.Encode())
	}
	return b.String()
}

// Do sends req and copies the response body into body chunk by chunk.
func (t HTTPTransport) Do(ctx context.Context, req Request, body io.Writer) (int, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.URL(req), req.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare %s %s: %w", method, req.Path, err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed to send %s %s: %w\nEnsure the docker daemon is running and reachable", method, req.Path, err)
	}
	defer resp.Body.Close()

	if body == nil {
		body = io.Discard
	}
	if _, err := io.Copy(body, resp.Body); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to stream response of %s %s: %w", method, req.Path, err)
	}

	return resp.StatusCode, nil
}
