package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func stationPath(id string) string {
	return "/api/v1/stations/" + url.PathEscape(id)
}

func newStationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Station commands",
	}

	cmd.AddCommand(newStationListCmd())
	cmd.AddCommand(newStationGetCmd())
	cmd.AddCommand(newStationCreateCmd())
	cmd.AddCommand(newStationStatusCmd())
	cmd.AddCommand(newStationDelayCmd())
	cmd.AddCommand(newStationDeleteCmd())

	return cmd
}

func newStationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Station
			if err := client.Get("/api/v1/stations", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStationGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Station
			if err := client.Get(stationPath(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStationCreateCmd() *cobra.Command {
	var name, number, image string
	var maxPoints int64
	var delay int
	var open bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a station (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":      name,
				"number":    number,
				"maxPoints": maxPoints,
				"status":    open,
				"delay":     delay,
				"image":     image,
			}
			var result Station
			if err := client.Post("/api/v1/stations", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Station name (required)")
	cmd.Flags().StringVar(&number, "number", "", "Station number")
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	cmd.Flags().Int64Var(&maxPoints, "max-points", 0, "Maximum points awarded at this station")
	cmd.Flags().IntVar(&delay, "delay", 0, "Delay in seconds")
	cmd.Flags().BoolVar(&open, "open", false, "Create the station open")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newStationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <on|off>",
		Short: "Open or close a station (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Station
			if err := client.Put(stationPath(args[0])+"/status/"+url.PathEscape(args[1]), nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStationDelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delay <id> <seconds>",
		Short: "Set a station's delay (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			var result Station
			if err := client.Patch(stationPath(args[0])+"/delay", map[string]int{"delay": seconds}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a station (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(stationPath(args[0]), nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Station deleted")
			return nil
		},
	}
}
