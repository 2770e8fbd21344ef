// Package roster joins event rows to team and player identity.
package roster

import (
	"context"
	"fmt"

	"github.com/okian/datastrike/internal/domain/model"
)

// Team is a club in the roster.
type Team struct {
	ID      int64  `json:"id"`
	Nombre  string `json:"nombre"`
	LogoURL string `json:"logo_url,omitempty"`
	Liga    string `json:"liga,omitempty"`
}

// Player is a squad member. ID matches the id_jugador column of match exports.
type Player struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Numero    *int   `json:"numero"`
	ImagenURL string `json:"imagen_url,omitempty"`
	EquipoID  int64  `json:"equipo_id"`
}

// Directory resolves players by id.
type Directory interface {
	// PlayersByIDs returns the known players among ids. Unknown ids are absent
	// from the result.
	PlayersByIDs(ctx context.Context, ids []int64) (map[int64]Player, error)
}

// Merge returns a copy of t with jugador, imagen_jugador and id_club filled
// from the directory. Values already present in a row are kept.
func Merge(ctx context.Context, t *model.Table, dir Directory) (*model.Table, error) {
	idCol, ok := t.PlayerIDColumn()
	if !ok {
		return nil, &model.MissingColumnError{
			Column:  model.ColPlayerID,
			Aliases: []string{model.ColPlayerID, model.ColPlayerIDAlt},
		}
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, r := range t.Rows {
		if id, ok := r.Get(idCol).Int(); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	players, err := dir.PlayersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup players: %w", err)
	}

	out := model.NewTable(t.Columns...)
	out.AddColumn(model.ColPlayerName)
	out.AddColumn(model.ColPlayerImage)
	out.AddColumn(model.ColTeamID)
	out.Rows = make([]model.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(model.Row, len(r)+3)
		for k, v := range r {
			row[k] = v
		}
		if id, ok := r.Get(idCol).Int(); ok {
			if p, found := players[id]; found {
				fill(row, model.ColPlayerName, model.Text(p.Nombre))
				fill(row, model.ColPlayerImage, model.Text(p.ImagenURL))
				fill(row, model.ColTeamID, model.Number(float64(p.EquipoID)))
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func fill(r model.Row, col string, v model.Cell) {
	if r.Get(col).IsNull() {
		r[col] = v
	}
}

// FilterByTeam keeps rows whose id_club equals teamID.
func FilterByTeam(t *model.Table, teamID int64) (*model.Table, error) {
	if !t.HasColumn(model.ColTeamID) {
		return nil, &model.MissingColumnError{Column: model.ColTeamID, Aliases: []string{model.ColTeamID}}
	}
	out := t.Filter(func(r model.Row) bool {
		id, ok := r.Get(model.ColTeamID).Int()
		return ok && id == teamID
	})
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: no events for team %d", model.ErrInvalidFilter, teamID)
	}
	return out, nil
}
