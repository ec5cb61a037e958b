package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/moby/moby/api/types/network"
)

// DefaultNetworkDriver is used when NetworkOptions leaves the driver empty.
const DefaultNetworkDriver = "bridge"

// Network is a handle on a daemon network. Its calls forward response bytes
// to the sink it was created with.
type Network struct {
	client Client
	output io.Writer

	ID   string
	Name string
}

func networkPath(id, suffix string) string {
	return "/networks/" + url.PathEscape(id) + suffix
}

// CreateNetwork creates a network called name and returns a handle carrying
// its shortened id. A name that is already taken yields ErrAlreadyExists.
func (c Client) CreateNetwork(ctx context.Context, name string, options NetworkOptions, sink io.Writer) (Network, error) {
	driver := options.Driver
	if driver == "" {
		driver = DefaultNetworkDriver
	}

	payload, err := json.Marshal(createNetworkRequest{
		CreateRequest: network.CreateRequest{
			Name:     name,
			Driver:   driver,
			Internal: options.Internal,
			Labels:   options.Labels,
		},
		CheckDuplicate: true,
	})
	if err != nil {
		return Network{}, fmt.Errorf("failed to encode configuration for network %q: %w", name, err)
	}

	status, state, err := c.streamed(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/networks/create",
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
	}, sink)
	if err != nil {
		return Network{}, fmt.Errorf("failed to create network %q: %w", name, err)
	}

	id, err := classifyCreateNetwork(status, state, name)
	if err != nil {
		return Network{}, err
	}

	return Network{
		client: c,
		output: sink,
		ID:     id,
		Name:   name,
	}, nil
}

// Network returns a handle for an existing network.
func (c Client) Network(id string, sink io.Writer) Network {
	return Network{
		client: c,
		output: sink,
		ID:     id,
		Name:   id,
	}
}

// ConnectNetwork attaches a container to a network.
func (c Client) ConnectNetwork(ctx context.Context, networkID, containerID string, aliases []string, sink io.Writer) error {
	request := network.ConnectRequest{Container: containerID}
	if len(aliases) > 0 {
		request.EndpointConfig = &network.EndpointSettings{Aliases: aliases}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode connection of container %q to network %q: %w", containerID, networkID, err)
	}

	status, decoder, err := c.accumulated(ctx, Request{
		Method:      http.MethodPost,
		Path:        networkPath(networkID, "/connect"),
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to connect container %q to network %q: %w", containerID, networkID, err)
	}
	return classifyConnectNetwork(status, decoder, networkID, containerID)
}

// RemoveNetwork deletes a network.
func (c Client) RemoveNetwork(ctx context.Context, id string, sink io.Writer) error {
	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodDelete,
		Path:   networkPath(id, ""),
	}, sink)
	if err != nil {
		return fmt.Errorf("failed to remove network %q: %w", id, err)
	}
	return classifyRemoveNetwork(status, decoder, id)
}

// InspectNetwork returns the daemon's description of a network.
func (c Client) InspectNetwork(ctx context.Context, id string, sink io.Writer) (NetworkInspection, error) {
	status, decoder, err := c.accumulated(ctx, Request{
		Method: http.MethodGet,
		Path:   networkPath(id, ""),
	}, sink)
	if err != nil {
		return NetworkInspection{}, fmt.Errorf("failed to inspect network %q: %w", id, err)
	}
	return classifyInspectNetwork(status, decoder, id)
}

// Connect attaches the container with the given id to the network.
func (n Network) Connect(ctx context.Context, containerID string, aliases ...string) error {
	return n.client.ConnectNetwork(ctx, n.ID, containerID, aliases, n.output)
}

// Remove deletes the network.
func (n Network) Remove(ctx context.Context) error {
	return n.client.RemoveNetwork(ctx, n.ID, n.output)
}

// Inspect returns the daemon's description of the network.
func (n Network) Inspect(ctx context.Context) (NetworkInspection, error) {
	return n.client.InspectNetwork(ctx, n.ID, nil)
}
