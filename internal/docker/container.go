package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/moby/moby/api/types/container"
)

// RemoveOptions controls container removal.
type RemoveOptions struct {
	RemoveVolumes bool
	Force         bool
	RemoveLinks   bool
}

// Container is a handle on a daemon container. Its calls forward response
// bytes to the sink it was created with.
type Container struct {
	client Client
	output io.Writer

	ID          string
	Name        string
	StopTimeout int
}

func containerPath(id, suffix string) string {
	return "/containers/" + url.PathEscape(id) + suffix
}

// CreateContainer creates a container named name. The response is scanned
// for the new container's id, which is shortened to 12 characters. Bytes the
// daemon sends are forwarded to sink, which the returned handle keeps using
// for its lifecycle calls.
func (c Client) CreateContainer(ctx context.Context, name string, options ContainerOptions, sink io.Writer) (Container, error) {
	payload, err := json.Marshal(container.CreateRequest{
		Config:           options.Config,
		HostConfig:       options.HostConfig,
		NetworkingConfig: options.NetworkingConfig,
	})
	if err != nil {
		return Container{}, fmt.Errorf("failed to encode configuration for container %q: %w", name, err)
	}

	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}

	status, state, err := c.streamed(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/containers/create",
		Query:       query,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
	}, sink)
	if err != nil {
		return Container{}, fmt.Errorf("failed to create container %q: %w", name, err)
	}

	id, err := classifyCreateContainer(status, state, name)
	if err != nil {
		return Container{}, err
	}

	return Container{
		client: c,
		output: sink,
		ID:     id,
		Name:   name,
	}, nil
}

// Container returns a handle for an existing container.
func (c Client) Container(id string, sink io.Writer) Container {
	return Container{
		client: c,
		output: sink,
		ID:     id,
		Name:   id,
	}
}

// StartContainer starts a created container.
func (c Client) StartContainer(ctx context.Context, id string, sink io.Writer) error {
	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/start"),
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w", id, err)
	}
	return classifyStartContainer(status, state, id)
}

// StopContainer stops a container, waiting timeout seconds before the
// daemon kills it. A nil timeout leaves the choice to the daemon. Stopping a
// container that is not running succeeds.
func (c Client) StopContainer(ctx context.Context, id string, timeout *int, sink io.Writer) error {
	query := url.Values{}
	if timeout != nil {
		query.Set("t", strconv.Itoa(*timeout))
	}

	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/stop"),
		Query:  query,
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to stop container %q: %w", id, err)
	}
	return classifyStopContainer(status, state, id)
}

// KillContainer sends signal to a container. An empty signal means SIGKILL.
func (c Client) KillContainer(ctx context.Context, id, signal string, sink io.Writer) error {
	query := url.Values{}
	if signal != "" {
		query.Set("signal", signal)
	}

	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/kill"),
		Query:  query,
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to kill container %q: %w", id, err)
	}
	return classifyKillContainer(status, state, id)
}

// RemoveContainer deletes a container. Each error status carries the raw
// response body alongside the daemon's message.
func (c Client) RemoveContainer(ctx context.Context, id string, options RemoveOptions, sink io.Writer) error {
	query := url.Values{}
	query.Set("v", strconv.FormatBool(options.RemoveVolumes))
	query.Set("force", strconv.FormatBool(options.Force))
	query.Set("link", strconv.FormatBool(options.RemoveLinks))

	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodDelete,
		Path:   containerPath(id, ""),
		Query:  query,
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to remove container %q: %w", id, err)
	}
	return classifyRemoveContainer(status, decoder, id)
}

// InspectContainer returns the daemon's description of a container.
func (c Client) InspectContainer(ctx context.Context, id string, sink io.Writer) (ContainerInspection, error) {
	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodGet,
		Path:   containerPath(id, "/json"),
	}, sink)
	if err != nil {
		return ContainerInspection{}, fmt.Errorf("failed to inspect container %q: %w", id, err)
	}
	return classifyInspectContainer(status, decoder, id)
}

// WaitContainer blocks until a container is no longer running and returns
// its exit status.
func (c Client) WaitContainer(ctx context.Context, id string, sink io.Writer) (WaitResult, error) {
	query := url.Values{}
	query.Set("condition", string(container.WaitConditionNotRunning))

	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/wait"),
		Query:  query,
	}, sink)
	if err != nil {
		return WaitResult{}, fmt.Errorf("failed to wait for container %q: %w", id, err)
	}
	return classifyWaitContainer(status, decoder, id)
}

// AttachContainer streams a container's output, including what it logged
// before the call, to sink until the container exits.
func (c Client) AttachContainer(ctx context.Context, id string, sink io.Writer) error {
	query := url.Values{}
	query.Set("logs", "1")
	query.Set("stream", "1")
	query.Set("stdout", "1")
	query.Set("stderr", "1")

	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/attach"),
		Query:  query,
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to attach to container %q: %w", id, err)
	}
	return classifyContainerStream(OpAttachContainer, status, state, id)
}

// ContainerLogs copies a container's stdout and stderr to sink. With follow
// set the call lasts until the container stops.
func (c Client) ContainerLogs(ctx context.Context, id string, follow bool, sink io.Writer) error {
	query := url.Values{}
	query.Set("stdout", "1")
	query.Set("stderr", "1")
	if follow {
		query.Set("follow", "1")
	}

	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodGet,
		Path:   containerPath(id, "/logs"),
		Query:  query,
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to read logs of container %q: %w", id, err)
	}
	return classifyContainerStream(OpContainerLogs, status, state, id)
}

// ResizeContainer sets the size of a container's TTY.
func (c Client) ResizeContainer(ctx context.Context, id string, height, width uint) error {
	query := url.Values{}
	query.Set("h", strconv.FormatUint(uint64(height), 10))
	query.Set("w", strconv.FormatUint(uint64(width), 10))

	status, state, err := c.streamed(ctx, Request{
		Method: http.MethodPost,
		Path:   containerPath(id, "/resize"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to resize container %q: %w", id, err)
	}
	return classifyContainerStream(OpResizeContainer, status, state, id)
}

// Start starts the container. Returns an error if the container fails to start,
// which may indicate a misconfiguration or an unhealthy Docker daemon.
func (c Container) Start(ctx context.Context) error {
	return c.client.StartContainer(ctx, c.ID, c.output)
}

// Stop stops the container, allowing it StopTimeout seconds to exit before the
// daemon kills it.
func (c Container) Stop(ctx context.Context) error {
	timeout := c.StopTimeout
	return c.client.StopContainer(ctx, c.ID, &timeout, c.output)
}

// Kill sends signal to the container.
func (c Container) Kill(ctx context.Context, signal string) error {
	return c.client.KillContainer(ctx, c.ID, signal, c.output)
}

// Remove removes the container from the Docker daemon.
// Returns an error if the container is still running or cannot be removed.
// Use ForceRemove to remove a running container.
func (c Container) Remove(ctx context.Context) error {
	return c.client.RemoveContainer(ctx, c.ID, RemoveOptions{}, c.output)
}

// ForceRemove forcibly removes the container and its anonymous volumes, even
// if it is still running.
func (c Container) ForceRemove(ctx context.Context) error {
	return c.client.RemoveContainer(ctx, c.ID, RemoveOptions{Force: true, RemoveVolumes: true}, c.output)
}

// Inspect returns the daemon's description of the container.
func (c Container) Inspect(ctx context.Context) (ContainerInspection, error) {
	return c.client.InspectContainer(ctx, c.ID, nil)
}

// Wait blocks until the container exits and returns its exit status.
func (c Container) Wait(ctx context.Context) (WaitResult, error) {
	return c.client.WaitContainer(ctx, c.ID, nil)
}

// Attach streams the container's output to sink until it exits.
func (c Container) Attach(ctx context.Context, sink io.Writer) error {
	return c.client.AttachContainer(ctx, c.ID, sink)
}

// Logs copies the container's output to sink.
func (c Container) Logs(ctx context.Context, follow bool, sink io.Writer) error {
	return c.client.ContainerLogs(ctx, c.ID, follow, sink)
}

// Resize sets the size of the container's TTY.
func (c Container) Resize(ctx context.Context, height, width uint) error {
	return c.client.ResizeContainer(ctx, c.ID, height, width)
}

// ConnectTo attaches the container to network under the given aliases.
func (c Container) ConnectTo(ctx context.Context, network Network, aliases ...string) error {
	return c.client.ConnectNetwork(ctx, network.ID, c.ID, aliases, c.output)
}
