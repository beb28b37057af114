package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func pointsPath(id string) string {
	return "/api/v1/points/" + url.PathEscape(id)
}

func newPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Point log commands",
	}

	cmd.AddCommand(newPointsRegisterCmd())
	cmd.AddCommand(newPointsListCmd())
	cmd.AddCommand(newPointsGetCmd())
	cmd.AddCommand(newPointsEditCmd())
	cmd.AddCommand(newPointsRevokeCmd())
	cmd.AddCommand(newPointsAuditCmd())

	return cmd
}

func newPointsRegisterCmd() *cobra.Command {
	var player, station, description string
	var points int64

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Award points to a player at a station",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"playerNumber": player,
				"stationId":    station,
				"points":       points,
				"description":  description,
			}
			var result LedgerResult
			if err := client.Post("/api/v1/points", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player number (required)")
	cmd.Flags().StringVar(&station, "station", "", "Station ID (required)")
	cmd.Flags().Int64Var(&points, "points", 0, "Points, negative to deduct (required)")
	cmd.Flags().StringVar(&description, "description", "", "Note stored with the entry")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("station")
	_ = cmd.MarkFlagRequired("points")

	return cmd
}

func newPointsListCmd() *cobra.Command {
	var player, station string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List point log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if player != "" {
				q.Set("playerId", player)
			}
			if station != "" {
				q.Set("stationId", station)
			}
			path := "/api/v1/points"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var result []PointLog
			if err := client.Get(path, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player-id", "", "Only entries for this player ID")
	cmd.Flags().StringVar(&station, "station-id", "", "Only entries for this station ID")

	return cmd
}

func newPointsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PointLog
			if err := client.Get(pointsPath(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPointsEditCmd() *cobra.Command {
	var player, station, description string
	var points int64

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Correct a log entry (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("player-id") {
				req["playerId"] = player
			}
			if cmd.Flags().Changed("station-id") {
				req["stationId"] = station
			}
			if cmd.Flags().Changed("points") {
				req["points"] = points
			}
			if cmd.Flags().Changed("description") {
				req["description"] = description
			}
			var result LedgerResult
			if err := client.Patch(pointsPath(args[0]), req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player-id", "", "Move the entry to this player ID")
	cmd.Flags().StringVar(&station, "station-id", "", "Move the entry to this station ID")
	cmd.Flags().Int64Var(&points, "points", 0, "New points value")
	cmd.Flags().StringVar(&description, "description", "", "New description")

	return cmd
}

func newPointsRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Delete a log entry and reverse its points (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LedgerResult
			if err := client.Delete(pointsPath(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPointsAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List players whose balance disagrees with the log (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []BalanceDrift
			if err := client.Get("/api/v1/audit", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
