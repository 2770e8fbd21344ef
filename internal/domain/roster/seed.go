package roster

import (
	"fmt"

	"github.com/okian/datastrike/internal/domain/model"
)

// Roster spreadsheet columns, after header normalization.
const (
	ColTeamName  = "nombre_equipo"
	ColTeamLogo  = "imagen_logo"
	ColName      = "nombre"
	ColShirt     = "numcamisa"
	ColPlayerImg = model.ColPlayerImage
)

// TeamsFromTable reads teams from a sheet with id_club and nombre_equipo
// columns and an optional imagen_logo column.
func TeamsFromTable(t *model.Table) ([]Team, error) {
	if err := requireColumns(t, model.ColTeamID, ColTeamName); err != nil {
		return nil, err
	}
	teams := make([]Team, 0, t.Len())
	for i, r := range t.Rows {
		id, ok := r.Get(model.ColTeamID).Int()
		if !ok {
			return nil, rowError(i, model.ColTeamID, r.Get(model.ColTeamID))
		}
		teams = append(teams, Team{
			ID:      id,
			Nombre:  r.Get(ColTeamName).String(),
			LogoURL: r.Get(ColTeamLogo).String(),
		})
	}
	return teams, nil
}

// PlayersFromTable reads players from a sheet with id_jugador, nombre and
// id_club columns and optional numcamisa and imagen_jugador columns.
func PlayersFromTable(t *model.Table) ([]Player, error) {
	if err := requireColumns(t, model.ColPlayerID, ColName, model.ColTeamID); err != nil {
		return nil, err
	}
	players := make([]Player, 0, t.Len())
	for i, r := range t.Rows {
		id, ok := r.Get(model.ColPlayerID).Int()
		if !ok {
			return nil, rowError(i, model.ColPlayerID, r.Get(model.ColPlayerID))
		}
		team, ok := r.Get(model.ColTeamID).Int()
		if !ok {
			return nil, rowError(i, model.ColTeamID, r.Get(model.ColTeamID))
		}
		p := Player{
			ID:        id,
			Nombre:    r.Get(ColName).String(),
			ImagenURL: r.Get(ColPlayerImg).String(),
			EquipoID:  team,
		}
		if n, ok := r.Get(ColShirt).Int(); ok {
			num := int(n)
			p.Numero = &num
		}
		players = append(players, p)
	}
	return players, nil
}

func requireColumns(t *model.Table, cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return &model.MissingColumnError{Column: c, Aliases: []string{c}}
		}
	}
	return nil
}

// rowError reports a bad identifier. Row numbers are 1-based data rows.
func rowError(i int, col string, v model.Cell) error {
	return fmt.Errorf("%w: row %d: %s %q is not an integer id", model.ErrParse, i+1, col, v.String())
}
