package docker

import (
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/image"
	"github.com/moby/moby/api/types/network"
)

// ContainerInspection is the engine's full description of a container.
type ContainerInspection = container.InspectResponse

// WaitResult is the engine's report of a container exit.
type WaitResult = container.WaitResponse

// NetworkInspection is the engine's description of a network, including the
// endpoints of the containers attached to it.
type NetworkInspection = network.Inspect

// ImageDeleteItem records one tag removed or one image deleted.
type ImageDeleteItem = image.DeleteResponse

// PruneReport summarizes an image prune.
type PruneReport = image.PruneReport

// ContainerOptions configures a new container.
type ContainerOptions struct {
	Config           *container.Config
	HostConfig       *container.HostConfig
	NetworkingConfig *network.NetworkingConfig
}

// NetworkOptions configures a new network.
type NetworkOptions struct {
	Driver   string
	Internal bool
	Labels   map[string]string
}

// createNetworkRequest adds CheckDuplicate, which the api types dropped, for
// daemons older than API 1.44 that still honour it.
type createNetworkRequest struct {
	network.CreateRequest
	CheckDuplicate bool `json:"CheckDuplicate"`
}
