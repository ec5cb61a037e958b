package docker_test

import (
	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockline/internal/docker"
)

// Compile-time checks for the collaborators the package is built around
var (
	_ docker.Daemon    = (*client.Client)(nil)
	_ docker.Transport = docker.HTTPTransport{}
	_ docker.Resizer   = docker.Client{}
)
