package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockline/internal"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/spf13/cobra"
)

// ClientFactory opens a docker client for config.
type ClientFactory func(ctx context.Context, config internal.Config) (docker.Client, error)

// App carries what every command needs: the environment, the output streams
// and a way to reach the daemon. Commands capture it through closures.
type App struct {
	env    []string
	stdout io.Writer
	stderr io.Writer

	config    internal.Config
	writer    *internal.StandardWriter
	newClient ClientFactory
}

// NewApp creates an App reading its defaults from env.
func NewApp(env []string, stdout, stderr io.Writer) *App {
	app := &App{
		env:       env,
		stdout:    stdout,
		stderr:    stderr,
		newClient: defaultClient,
	}
	app.configure(internal.ParseConfig(env))
	return app
}

// configure replaces the daemon settings and rebuilds the writer so the
// debug level follows them.
func (a *App) configure(config internal.Config) {
	a.config = config
	a.writer = internal.NewCustomWriter(a.stdout, a.stderr, config.Debug)
}

func defaultClient(ctx context.Context, config internal.Config) (docker.Client, error) {
	var opts []client.Opt
	if config.Host != "" {
		opts = append(opts, client.WithHost(config.Host))
	}
	if config.APIVersion != "" {
		opts = append(opts, client.WithAPIVersion(config.APIVersion))
	}
	return docker.NewDefaultClient(ctx, config.APIVersion, opts...)
}

// client opens a client for the current settings. Callers close it.
func (a *App) client(ctx context.Context) (docker.Client, error) {
	a.writer.Debugf("connecting to docker daemon (host=%q, api-version=%q)", a.config.Host, a.config.APIVersion)
	return a.newClient(ctx, a.config)
}

// printJSON writes v as indented JSON followed by a newline.
func (a *App) printJSON(v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	a.writer.Println(string(content))
	return nil
}

func newRootCommand(app *App) *cobra.Command {
	var (
		host       = app.config.Host
		apiVersion = app.config.APIVersion
		debug      = app.config.Debug
	)

	rootCmd := &cobra.Command{
		Use:   "dockline",
		Short: "Drive a docker daemon over its HTTP API",
		Long: `dockline talks to a docker daemon over its HTTP API, streaming every
response to the terminal as it arrives and reporting failures with the
daemon's own message.

The daemon is located through DOCKER_HOST (or --host) and the API version
is negotiated unless DOCKER_API_VERSION (or --api-version) pins it.

Examples:
  dockline ping
  dockline build -t app:dev .
  dockline up --image alpine:3.20 --pull sh -c 'echo hello'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.configure(internal.Config{
				Host:       host,
				APIVersion: apiVersion,
				Debug:      debug,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", host, "daemon socket to connect to")
	rootCmd.PersistentFlags().StringVar(&apiVersion, "api-version", apiVersion, "daemon API version (negotiated when empty)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", debug, "enable debug output")

	rootCmd.AddCommand(newPingCommand(app))
	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newPullCommand(app))
	rootCmd.AddCommand(newRemoveImageCommand(app))
	rootCmd.AddCommand(newImageCommand(app))
	for _, cmd := range newContainerCommands(app) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newNetworkCommand(app))
	rootCmd.AddCommand(newUpCommand(app))

	return rootCmd
}

// execute runs the command tree with args, which exclude the program name.
func execute(ctx context.Context, app *App, args []string) error {
	rootCmd := newRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd.ExecuteContext(ctx)
}

func newPingCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd.Context(), app)
		},
	}
}

func runPing(ctx context.Context, app *App) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		return err
	}
	app.writer.Println("OK")
	return nil
}
