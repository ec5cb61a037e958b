package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/docker/cli/cli/streams"
	"github.com/moby/moby/api/types/container"
	"github.com/ryanmoran/dockline/internal"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newUpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "up [flags] <command>...",
		Short: "Build or pull an image and run a command in a fresh container",
		Long: `Build (or pull) an image, start a container running the command on a
network of its own, stream its output and wait for it to exit. The
container and network are removed afterwards. On interrupt the container is
stopped first.

Flags:
  --image string         image to build or pull (default "dockline:latest")
  --pull                 pull the image instead of building it
  --dockerfile string    Dockerfile path (default "Dockerfile")
  --context string       build context directory
  --env KEY=VALUE        set an environment variable (repeatable)
  --volume host:ctr      bind mount a volume (repeatable)
  --network string       use an existing network instead of creating one
  --workdir string       working directory inside the container
  --stop-timeout int     seconds to wait before the container is killed (default 10)
  --host, --api-version, --debug
                         as for every other command

Flags must come before the command.

Examples:
  dockline up sh -c 'go test ./...'
  dockline up --pull --image alpine:3.20 --env GREETING=hi sh -c 'echo $GREETING'`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := internal.ParseRunConfig(args, app.env)
			if errors.Is(err, flag.ErrHelp) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}
			if len(config.Args) == 0 {
				return errors.New("no command given\nRun 'dockline up --help' for usage")
			}

			app.configure(config.Config)
			return runUp(cmd.Context(), app, config)
		},
	}
}

func runUp(ctx context.Context, app *App, config internal.RunConfig) error {
	w := app.writer

	cleanupMgr := internal.NewCleanupManager(w.Logger())
	defer cleanupMgr.Execute()

	// Resources are released even after ctx was cancelled by a signal.
	cleanupCtx := context.WithoutCancel(ctx)

	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	cleanupMgr.Add("docker-client", func() error {
		c.Close()
		return nil
	})

	session := internal.GenerateSession()
	image := string(config.ImageName)

	if config.Pull {
		name, tag, err := docker.SplitImageReference(image)
		if err != nil {
			return err
		}
		warning, err := c.PullImage(ctx, name, tag, w.GetWriter())
		if err != nil {
			return err
		}
		if warning != "" {
			w.Warningf("pull of %s reported: %s", image, warning)
		}
	} else {
		id, err := c.BuildImage(ctx, docker.BuildOptions{
			ContextDir: config.ContextDir,
			Dockerfile: config.DockerfilePath,
			Tag:        image,
		}, w.GetWriter())
		if err != nil {
			return err
		}
		w.Debugf("built image %s as %q", id, image)
	}

	networkName := config.Network
	if networkName == "" {
		network, err := c.CreateNetwork(ctx, session.Network(), docker.NetworkOptions{
			Labels: session.Labels(),
		}, nil)
		if err != nil {
			return err
		}
		cleanupMgr.Add("network", func() error {
			return network.Remove(cleanupCtx)
		})
		networkName = network.Name
	}

	ctr, err := c.CreateContainer(ctx, string(session.ID()), docker.ContainerOptions{
		Config: &container.Config{
			Image:        image,
			Cmd:          []string(config.Args),
			Tty:          true,
			AttachStdout: true,
			AttachStderr: true,
			Env:          []string(config.Env),
			WorkingDir:   config.WorkingDir,
			Labels:       session.Labels(),
		},
		HostConfig: &container.HostConfig{
			ExtraHosts: []string{
				"host.docker.internal:host-gateway",
			},
			Binds:       config.Volumes,
			NetworkMode: container.NetworkMode(networkName),
		},
	}, nil)
	if err != nil {
		return err
	}
	ctr.StopTimeout = config.StopTimeout
	cleanupMgr.Add("container", func() error {
		return ctr.ForceRemove(cleanupCtx)
	})

	if err := ctr.Start(ctx); err != nil {
		return err
	}

	out := streams.NewOut(app.stdout)

	g, gctx := errgroup.WithContext(ctx)
	docker.NewTTY(c, out, ctr.ID, config.TTYRetries, config.RetryDelay, w).Monitor(gctx)

	g.Go(func() error {
		return ctr.Attach(gctx, out)
	})

	var result docker.WaitResult
	g.Go(func() error {
		var err error
		result, err = ctr.Wait(gctx)
		return err
	})

	err = g.Wait()
	if ctx.Err() != nil {
		w.Println("\nReceived signal, stopping container...")
		if err := ctr.Stop(cleanupCtx); err != nil {
			w.Warningf("failed to stop container: %v", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run container %q: %w", session.ID(), err)
	}

	w.Printf("\nContainer exited with status: %d\n", result.StatusCode)
	if result.StatusCode != 0 {
		return &ExitError{Code: int(result.StatusCode)}
	}
	return nil
}
