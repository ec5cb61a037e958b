package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/go-units"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/spf13/cobra"
)

func newBuildCommand(app *App) *cobra.Command {
	var (
		options   docker.BuildOptions
		buildArgs []string
	)

	cmd := &cobra.Command{
		Use:   "build [context]",
		Short: "Build an image",
		Long: `Build an image from a Dockerfile.

With a context directory the whole directory, minus what .dockerignore
excludes, is sent to the daemon and --file is relative to it. Without one
the context holds only the Dockerfile named by --file.

Examples:
  dockline build -t app:dev .
  dockline build -f build/Dockerfile -t app:dev
  dockline build --build-arg VERSION=1.2.3 --no-cache -t app:dev .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				options.ContextDir = args[0]
			}

			parsed, err := parseBuildArgs(buildArgs)
			if err != nil {
				return err
			}
			options.BuildArgs = parsed

			return runBuild(cmd.Context(), app, options)
		},
	}

	cmd.Flags().StringVarP(&options.Dockerfile, "file", "f", "Dockerfile", "name of the Dockerfile")
	cmd.Flags().StringVarP(&options.Tag, "tag", "t", "", "name and optionally a tag in the name:tag format")
	cmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "set build-time variables (KEY=VALUE)")
	cmd.Flags().BoolVar(&options.NoCache, "no-cache", false, "do not use cache when building the image")

	return cmd
}

func parseBuildArgs(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	args := make(map[string]string, len(values))
	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid build argument %q\nUse the form KEY=VALUE", value)
		}
		args[key] = val
	}
	return args, nil
}

func runBuild(ctx context.Context, app *App, options docker.BuildOptions) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	id, err := c.BuildImage(ctx, options, app.writer.GetWriter())
	if err != nil {
		return err
	}

	app.writer.Println(id)
	return nil
}

func newPullCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <image>",
		Short: "Pull an image from a registry",
		Long: `Pull an image from a registry. The tag defaults to latest; a digest
may be given instead.

Examples:
  dockline pull alpine
  dockline pull ghcr.io/org/app:v1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd.Context(), app, args[0])
		},
	}
}

func runPull(ctx context.Context, app *App, ref string) error {
	image, tag, err := docker.SplitImageReference(ref)
	if err != nil {
		return err
	}

	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	warning, err := c.PullImage(ctx, image, tag, app.writer.GetWriter())
	if err != nil {
		return err
	}
	if warning != "" {
		app.writer.Warningf("pull of %s reported: %s", ref, warning)
	}
	return nil
}

func newRemoveImageCommand(app *App) *cobra.Command {
	var force, noPrune bool

	cmd := &cobra.Command{
		Use:   "rmi <image>...",
		Short: "Remove one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemoveImages(cmd.Context(), app, args, force, noPrune)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force removal of the image")
	cmd.Flags().BoolVar(&noPrune, "no-prune", false, "do not delete untagged parents")

	return cmd
}

func runRemoveImages(ctx context.Context, app *App, refs []string, force, noPrune bool) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, ref := range refs {
		items, err := c.RemoveImage(ctx, ref, force, noPrune, nil)
		if err != nil {
			return err
		}
		printDeleted(app, items)
	}
	return nil
}

func printDeleted(app *App, items []docker.ImageDeleteItem) {
	for _, item := range items {
		if item.Untagged != "" {
			app.writer.Printf("Untagged: %s\n", item.Untagged)
		}
		if item.Deleted != "" {
			app.writer.Printf("Deleted: %s\n", item.Deleted)
		}
	}
}

func newImageCommand(app *App) *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Manage images",
	}

	var all bool
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove unused images",
		Long: `Remove dangling images, or every unused image with --all.

Examples:
  dockline image prune
  dockline image prune --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPruneImages(cmd.Context(), app, !all)
		},
	}
	pruneCmd.Flags().BoolVarP(&all, "all", "a", false, "remove all unused images, not just dangling ones")

	imageCmd.AddCommand(pruneCmd)
	return imageCmd
}

func runPruneImages(ctx context.Context, app *App, dangling bool) error {
	c, err := app.client(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	report, err := c.PruneImages(ctx, dangling, nil)
	if err != nil {
		return err
	}

	printDeleted(app, report.ImagesDeleted)
	app.writer.Printf("Total reclaimed space: %s\n", units.HumanSize(float64(report.SpaceReclaimed)))
	return nil
}
