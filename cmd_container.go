package main

import (
	"context"

	"github.com/moby/moby/api/types/container"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/spf13/cobra"
)

func newContainerCommands(app *App) []*cobra.Command {
	return []*cobra.Command{
		newCreateCommand(app),
		newStartCommand(app),
		newStopCommand(app),
		newKillCommand(app),
		newRemoveCommand(app),
		newInspectCommand(app),
		newWaitCommand(app),
		newAttachCommand(app),
		newLogsCommand(app),
	}
}

// forEachContainer opens one client and calls fn for every id, stopping at
// the first failure.
func forEachContainer(ctx context.Context, app *App, ids []string, fn func(docker.Container) error) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, id := range ids {
		if err := fn(c.Container(id, app.writer.GetWriter())); err != nil {
			return err
		}
	}
	return nil
}

func newCreateCommand(app *App) *cobra.Command {
	var (
		name    string
		env     []string
		volumes []string
		workdir string
		network string
		tty     bool
	)

	cmd := &cobra.Command{
		Use:   "create [flags] <image> [command...]",
		Short: "Create a new container",
		Long: `Create a new container from an image and print its id.

Flags must come before the image; everything after it is the command.

Examples:
  dockline create --name web nginx:alpine
  dockline create -e GREETING=hi alpine:3.20 sh -c 'echo $GREETING'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var command []string
			if len(args) > 1 {
				command = args[1:]
			}

			options := docker.ContainerOptions{
				Config: &container.Config{
					Image:        args[0],
					Cmd:          command,
					Env:          env,
					WorkingDir:   workdir,
					Tty:          tty,
					AttachStdout: true,
					AttachStderr: true,
				},
				HostConfig: &container.HostConfig{
					Binds:       volumes,
					NetworkMode: container.NetworkMode(network),
				},
			}
			return runCreate(cmd.Context(), app, name, options)
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&name, "name", "", "assign a name to the container")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "set environment variables (KEY=VALUE)")
	cmd.Flags().StringArrayVarP(&volumes, "volume", "v", nil, "bind mount a volume (host:container)")
	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "working directory inside the container")
	cmd.Flags().StringVar(&network, "network", "", "connect the container to a network")
	cmd.Flags().BoolVarP(&tty, "tty", "t", false, "allocate a pseudo-TTY")

	return cmd
}

func runCreate(ctx context.Context, app *App, name string, options docker.ContainerOptions) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	ctr, err := c.CreateContainer(ctx, name, options, nil)
	if err != nil {
		return err
	}

	app.writer.Println(ctr.ID)
	return nil
}

func newStartCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <container>...",
		Short: "Start one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				if err := ctr.Start(cmd.Context()); err != nil {
					return err
				}
				app.writer.Println(ctr.ID)
				return nil
			})
		},
	}
}

func newStopCommand(app *App) *cobra.Command {
	var timeout int

	cmd := &cobra.Command{
		Use:   "stop <container>...",
		Short: "Stop one or more running containers",
		Long: `Stop one or more running containers. Stopping a container that is
already stopped succeeds.

Examples:
  dockline stop web
  dockline stop -t 2 web worker`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				ctr.StopTimeout = timeout
				if err := ctr.Stop(cmd.Context()); err != nil {
					return err
				}
				app.writer.Println(ctr.ID)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&timeout, "time", "t", 10, "seconds to wait before killing the container")

	return cmd
}

func newKillCommand(app *App) *cobra.Command {
	var signal string

	cmd := &cobra.Command{
		Use:   "kill <container>...",
		Short: "Send a signal to one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				if err := ctr.Kill(cmd.Context(), signal); err != nil {
					return err
				}
				app.writer.Println(ctr.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&signal, "signal", "s", "", "signal to send (default SIGKILL)")

	return cmd
}

func newRemoveCommand(app *App) *cobra.Command {
	var options docker.RemoveOptions

	cmd := &cobra.Command{
		Use:   "rm <container>...",
		Short: "Remove one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			for _, id := range args {
				if err := c.RemoveContainer(cmd.Context(), id, options, nil); err != nil {
					return err
				}
				app.writer.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&options.Force, "force", "f", false, "force the removal of a running container")
	cmd.Flags().BoolVarP(&options.RemoveVolumes, "volumes", "v", false, "remove anonymous volumes associated with the container")
	cmd.Flags().BoolVarP(&options.RemoveLinks, "link", "l", false, "remove the specified link")

	return cmd
}

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <container>...",
		Short: "Display detailed information on one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var inspections []docker.ContainerInspection
			err := forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				inspection, err := ctr.Inspect(cmd.Context())
				if err != nil {
					return err
				}
				inspections = append(inspections, inspection)
				return nil
			})
			if err != nil {
				return err
			}
			return app.printJSON(inspections)
		},
	}
}

func newWaitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <container>",
		Short: "Block until a container stops, then print its exit code",
		Long: `Block until a container stops, then print its exit code. dockline
exits with the same code.

Examples:
  dockline wait web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(cmd.Context(), app, args[0])
		},
	}
}

func runWait(ctx context.Context, app *App, id string) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.WaitContainer(ctx, id, nil)
	if err != nil {
		return err
	}

	app.writer.Println(result.StatusCode)
	if result.StatusCode != 0 {
		return &ExitError{Code: int(result.StatusCode)}
	}
	return nil
}

func newAttachCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <container>",
		Short: "Stream a running container's output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				return ctr.Attach(cmd.Context(), app.writer.GetWriter())
			})
		},
	}
}

func newLogsCommand(app *App) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <container>",
		Short: "Fetch the logs of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachContainer(cmd.Context(), app, args, func(ctr docker.Container) error {
				return ctr.Logs(cmd.Context(), follow, app.writer.GetWriter())
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow log output")

	return cmd
}
