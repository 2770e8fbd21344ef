package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/datastrike/internal/report"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the team and player roster",
	}
	cmd.AddCommand(newRosterImportCmd())
	cmd.AddCommand(newRosterListCmd())
	return cmd
}

func newRosterImportCmd() *cobra.Command {
	var teamsPath, playersPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import teams and players from xlsx or csv sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			teams, players, err := svc.ImportRoster(ctx, teamsPath, playersPath)
			if err != nil {
				return fmt.Errorf("import roster: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d teams and %d players.\n", teams, players)
			return nil
		},
	}
	cmd.Flags().StringVar(&teamsPath, "teams", "", "teams sheet (id_club, nombre_equipo, imagen_logo)")
	cmd.Flags().StringVar(&playersPath, "players", "", "players sheet (id_jugador, nombre, numcamisa, imagen_jugador, id_club)")
	_ = cmd.MarkFlagRequired("teams")
	_ = cmd.MarkFlagRequired("players")
	return cmd
}

func newRosterListCmd() *cobra.Command {
	var teamID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams, or one team's players with --team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			out := cmd.OutOrStdout()
			if teamID != 0 {
				players, err := svc.PlayersByTeam(ctx, teamID)
				if err != nil {
					return fmt.Errorf("list players: %w", err)
				}
				report.PrintPlayersOf(out, players)
				return nil
			}
			teams, err := svc.Teams(ctx)
			if err != nil {
				return fmt.Errorf("list teams: %w", err)
			}
			if len(teams) == 0 {
				fmt.Fprintln(out, "No teams stored yet. Run 'datastrike roster import' to add them.")
				return nil
			}
			report.PrintTeams(out, teams)
			return nil
		},
	}
	cmd.Flags().Int64Var(&teamID, "team", 0, "list this club's players")
	return cmd
}
