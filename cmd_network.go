package main

import (
	"fmt"
	"strings"

	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/spf13/cobra"
)

func newNetworkCommand(app *App) *cobra.Command {
	networkCmd := &cobra.Command{
		Use:   "network",
		Short: "Manage networks",
		Long: `Manage networks.

Examples:
  dockline network create --label team=web frontend
  dockline network connect --alias db frontend postgres
  dockline network inspect frontend
  dockline network rm frontend`,
	}

	var (
		options docker.NetworkOptions
		labels  []string
	)
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseLabels(labels)
			if err != nil {
				return err
			}
			options.Labels = parsed

			c, err := app.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			network, err := c.CreateNetwork(cmd.Context(), args[0], options, nil)
			if err != nil {
				return err
			}
			app.writer.Println(network.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&options.Driver, "driver", "d", docker.DefaultNetworkDriver, "driver to manage the network")
	createCmd.Flags().BoolVar(&options.Internal, "internal", false, "restrict external access to the network")
	createCmd.Flags().StringArrayVar(&labels, "label", nil, "set metadata on the network (KEY=VALUE)")

	var aliases []string
	connectCmd := &cobra.Command{
		Use:   "connect <network> <container>",
		Short: "Connect a container to a network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Network(args[0], nil).Connect(cmd.Context(), args[1], aliases...)
		},
	}
	connectCmd.Flags().StringArrayVar(&aliases, "alias", nil, "add a network-scoped alias for the container")

	removeCmd := &cobra.Command{
		Use:     "rm <network>...",
		Aliases: []string{"remove"},
		Short:   "Remove one or more networks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			for _, id := range args {
				if err := c.RemoveNetwork(cmd.Context(), id, nil); err != nil {
					return err
				}
				app.writer.Println(id)
			}
			return nil
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <network>...",
		Short: "Display detailed information on one or more networks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			var inspections []docker.NetworkInspection
			for _, id := range args {
				inspection, err := c.InspectNetwork(cmd.Context(), id, nil)
				if err != nil {
					return err
				}
				inspections = append(inspections, inspection)
			}
			return app.printJSON(inspections)
		},
	}

	networkCmd.AddCommand(createCmd, connectCmd, removeCmd, inspectCmd)
	return networkCmd
}

func parseLabels(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	labels := make(map[string]string, len(values))
	for _, value := range values {
		key, val, _ := strings.Cut(value, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid label %q\nUse the form KEY=VALUE", value)
		}
		labels[key] = val
	}
	return labels, nil
}
