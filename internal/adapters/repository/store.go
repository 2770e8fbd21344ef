// Package repository stores the team and player roster.
package repository

import (
	"context"

	"github.com/okian/datastrike/internal/domain/roster"
)

// Store provides read/write access to the roster.
type Store interface {
	// Teams returns every team ordered by name.
	Teams(ctx context.Context) ([]roster.Team, error)

	// Team returns one team. Returns ErrNotFound if the id is unknown.
	Team(ctx context.Context, id int64) (roster.Team, error)

	// PlayersByTeam returns a team's players ordered by shirt number.
	PlayersByTeam(ctx context.Context, teamID int64) ([]roster.Player, error)

	// PlayersByIDs resolves players for the roster merge.
	PlayersByIDs(ctx context.Context, ids []int64) (map[int64]roster.Player, error)

	// SeedTeams inserts teams whose id is not stored yet and reports how many
	// were added. Existing rows are left untouched.
	SeedTeams(ctx context.Context, teams []roster.Team) (int, error)

	// SeedPlayers is SeedTeams for players.
	SeedPlayers(ctx context.Context, players []roster.Player) (int, error)

	// Count returns the number of stored teams and players.
	Count(ctx context.Context) (teams, players int, err error)

	Close() error
}
