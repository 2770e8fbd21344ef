package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/datastrike/internal/domain/roster"
	"github.com/okian/datastrike/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

// lookupChunk bounds the number of bind variables in one IN clause.
const lookupChunk = 500

// SQLiteStore is a Store backed by an embedded SQLite database.
type SQLiteStore struct {
	conn *sql.DB

	metricsUpdateInterval time.Duration
	busyTimeout           time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (or creates) the roster database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		metricsUpdateInterval: 30 * time.Second,
		busyTimeout:           5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, s.busyTimeout.Milliseconds())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.conn = conn

	s.updateMetrics(ctx)
	if s.metricsUpdateInterval > 0 {
		s.startMetricsUpdater(ctx)
	}
	return s, nil
}

// Close stops the metrics updater and closes the database.
func (s *SQLiteStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return s.conn.Close()
}

func (s *SQLiteStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *SQLiteStore) updateMetrics(ctx context.Context) {
	teams, players, err := s.Count(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return
	}
	metrics.UpdateRosterSize(teams, players)
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// Teams implements Store.Teams.
func (s *SQLiteStore) Teams(ctx context.Context) ([]roster.Team, error) {
	defer observe("teams", time.Now())

	rows, err := s.conn.QueryContext(ctx, `SELECT id, nombre, logo_url, liga FROM equipos ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []roster.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Team implements Store.Team.
func (s *SQLiteStore) Team(ctx context.Context, id int64) (roster.Team, error) {
	defer observe("team", time.Now())

	row := s.conn.QueryRowContext(ctx, `SELECT id, nombre, logo_url, liga FROM equipos WHERE id = ?`, id)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return roster.Team{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return t, err
}

// PlayersByTeam implements Store.PlayersByTeam. Players without a number sort last.
func (s *SQLiteStore) PlayersByTeam(ctx context.Context, teamID int64) ([]roster.Player, error) {
	defer observe("players_by_team", time.Now())

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, nombre, numero, imagen_url, equipo_id
		FROM jugadores
		WHERE equipo_id = ?
		ORDER BY numero IS NULL, numero, id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []roster.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlayersByIDs implements roster.Directory.
func (s *SQLiteStore) PlayersByIDs(ctx context.Context, ids []int64) (map[int64]roster.Player, error) {
	defer observe("players_by_ids", time.Now())

	out := make(map[int64]roster.Player, len(ids))
	for start := 0; start < len(ids); start += lookupChunk {
		end := min(start+lookupChunk, len(ids))
		chunk := ids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		q := `SELECT id, nombre, numero, imagen_url, equipo_id FROM jugadores WHERE id IN (` +
			strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",") + `)`

		if err := s.collectPlayers(ctx, q, args, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) collectPlayers(ctx context.Context, q string, args []any, out map[int64]roster.Player) error {
	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query players by id: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return err
		}
		out[p.ID] = p
	}
	return rows.Err()
}

// SeedTeams implements Store.SeedTeams.
func (s *SQLiteStore) SeedTeams(ctx context.Context, teams []roster.Team) (int, error) {
	defer observe("seed_teams", time.Now())

	return s.seed(ctx, `
		INSERT INTO equipos(id, nombre, logo_url, liga) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`, len(teams), func(i int) []any {
		t := teams[i]
		return []any{t.ID, t.Nombre, nullString(t.LogoURL), nullString(t.Liga)}
	})
}

// SeedPlayers implements Store.SeedPlayers.
func (s *SQLiteStore) SeedPlayers(ctx context.Context, players []roster.Player) (int, error) {
	defer observe("seed_players", time.Now())

	return s.seed(ctx, `
		INSERT INTO jugadores(id, nombre, numero, imagen_url, equipo_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`, len(players), func(i int) []any {
		p := players[i]
		var num sql.NullInt64
		if p.Numero != nil {
			num = sql.NullInt64{Int64: int64(*p.Numero), Valid: true}
		}
		return []any{p.ID, p.Nombre, num, nullString(p.ImagenURL), p.EquipoID}
	})
}

// seed runs stmt for n rows in one transaction and returns the rows inserted.
func (s *SQLiteStore) seed(ctx context.Context, stmt string, n int, args func(i int) []any) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ps, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	defer ps.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		a := args(i)
		res, err := ps.ExecContext(ctx, a...)
		if err != nil {
			return 0, fmt.Errorf("insert row %d (id %v): %w", i+1, a[0], err)
		}
		if k, err := res.RowsAffected(); err == nil {
			inserted += int(k)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.updateMetrics(ctx)
	return inserted, nil
}

// Count implements Store.Count.
func (s *SQLiteStore) Count(ctx context.Context) (teams, players int, err error) {
	err = s.conn.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(1) FROM equipos), (SELECT COUNT(1) FROM jugadores)`).Scan(&teams, &players)
	return teams, players, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(sc scanner) (roster.Team, error) {
	var (
		t          roster.Team
		logo, liga sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.Nombre, &logo, &liga); err != nil {
		return roster.Team{}, err
	}
	t.LogoURL = logo.String
	t.Liga = liga.String
	return t, nil
}

func scanPlayer(sc scanner) (roster.Player, error) {
	var (
		p   roster.Player
		num sql.NullInt64
		img sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Nombre, &num, &img, &p.EquipoID); err != nil {
		return roster.Player{}, err
	}
	if num.Valid {
		n := int(num.Int64)
		p.Numero = &n
	}
	p.ImagenURL = img.String
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
