// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/okian/datastrike/internal/adapters/repository"
	"github.com/okian/datastrike/internal/domain/classify"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/internal/domain/loader"
	"github.com/okian/datastrike/internal/domain/model"
	"github.com/okian/datastrike/internal/domain/roster"
	"github.com/okian/datastrike/pkg/logger"
	"github.com/okian/datastrike/pkg/metrics"
)

// Default service configuration.
const (
	DefaultMaxUploadBytes = 20 << 20
	defaultDBPath         = "datastrike.db"
)

// Report kinds used as metric labels.
const (
	kindTeam   = "team"
	kindMatch  = "match"
	kindPeriod = "period"
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// Service implements the API dependencies for the KPI system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	ownsStore  bool
	aggregator *kpi.Aggregator
	aggOpts    []kpi.Option
	sem        *semaphore.Weighted

	// Configuration
	dbPath         string
	uploadDir      string
	maxUploadBytes int64
	maxConcurrent  int
	seedTeams      string
	seedPlayers    string

	// State
	started      bool
	startedAt    time.Time
	computations atomic.Int64
	failures     atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		ownsStore:      true,
		dbPath:         defaultDBPath,
		uploadDir:      os.TempDir(),
		maxUploadBytes: DefaultMaxUploadBytes,
		maxConcurrent:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sem = semaphore.NewWeighted(int64(s.maxConcurrent))
	s.aggregator = kpi.New(append(s.aggOpts, kpi.WithObserver(s))...)
	return s
}

// Start opens the roster store and seeds it when configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting kpi service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open roster: %w", err)
		}
		s.store = store
		s.ownsStore = true
		s.logger.Info(ctx, "roster store opened", logger.String("path", s.dbPath))
	}

	if s.seedTeams != "" || s.seedPlayers != "" {
		teams, players, err := s.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count roster: %w", err)
		}
		if teams == 0 && players == 0 {
			if _, _, err := s.importRoster(ctx, s.seedTeams, s.seedPlayers); err != nil {
				return fmt.Errorf("seed roster: %w", err)
			}
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "kpi service started",
		logger.Int("maxConcurrent", s.maxConcurrent),
		logger.Int64("maxUploadBytes", s.maxUploadBytes),
		logger.String("uploadDir", s.uploadDir),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping kpi service...")

	if s.store != nil && s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing roster store", logger.Error(err))
		}
		s.store = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "kpi service stopped")
}

func (s *Service) roster() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if s.store == nil {
		return nil, ErrNoRoster
	}
	return s.store, nil
}

// Teams lists every team ordered by name.
func (s *Service) Teams(ctx context.Context) ([]roster.Team, error) {
	store, err := s.roster()
	if err != nil {
		return nil, err
	}
	return store.Teams(ctx)
}

// PlayersByTeam lists a team's players. Unknown teams return
// repository.ErrNotFound.
func (s *Service) PlayersByTeam(ctx context.Context, teamID int64) ([]roster.Player, error) {
	store, err := s.roster()
	if err != nil {
		return nil, err
	}
	if _, err := store.Team(ctx, teamID); err != nil {
		return nil, err
	}
	return store.PlayersByTeam(ctx, teamID)
}

// ImportRoster seeds teams and players from spreadsheet files. Either path
// may be empty. Rows whose id already exists are skipped.
func (s *Service) ImportRoster(ctx context.Context, teamsPath, playersPath string) (teams, players int, err error) {
	if _, err := s.roster(); err != nil {
		return 0, 0, err
	}
	return s.importRoster(ctx, teamsPath, playersPath)
}

func (s *Service) importRoster(ctx context.Context, teamsPath, playersPath string) (teams, players int, err error) {
	if teamsPath != "" {
		t, err := loader.ReadTable(ctx, teamsPath)
		if err != nil {
			return 0, 0, err
		}
		rows, err := roster.TeamsFromTable(t)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", filepath.Base(teamsPath), err)
		}
		if teams, err = s.store.SeedTeams(ctx, rows); err != nil {
			return 0, 0, err
		}
	}
	if playersPath != "" {
		t, err := loader.ReadTable(ctx, playersPath)
		if err != nil {
			return teams, 0, err
		}
		rows, err := roster.PlayersFromTable(t)
		if err != nil {
			return teams, 0, fmt.Errorf("%s: %w", filepath.Base(playersPath), err)
		}
		if players, err = s.store.SeedPlayers(ctx, rows); err != nil {
			return teams, 0, err
		}
	}
	s.logger.Info(ctx, "roster imported", logger.Int("teams", teams), logger.Int("players", players))
	return teams, players, nil
}

// TeamKPIs spools an uploaded match file, joins it with the roster, keeps
// the events of teamID and computes its KPIs. The spooled file is removed
// on every path.
func (s *Service) TeamKPIs(ctx context.Context, teamID int64, filename string, r io.Reader) (*kpi.Report, error) {
	store, err := s.roster()
	if err != nil {
		return nil, err
	}
	if _, err := store.Team(ctx, teamID); err != nil {
		return nil, err
	}

	path, err := s.spool(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	defer s.discard(ctx, path)

	return s.FileKPIs(ctx, path, teamID)
}

// FileKPIs computes the KPI report of a match file on disk. A non-zero
// teamID restricts it to that team; otherwise the roster only supplies
// display names when the file carries player ids.
func (s *Service) FileKPIs(ctx context.Context, path string, teamID int64) (rep *kpi.Report, err error) {
	kind := kindMatch
	if teamID != 0 {
		kind = kindTeam
	}
	start := time.Now()
	defer func() { s.record(ctx, kind, start, err) }()

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	t, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	if teamID != 0 || s.canMerge(t) {
		store, err := s.roster()
		if err != nil {
			return nil, err
		}
		if t, err = roster.Merge(ctx, t, store); err != nil {
			return nil, err
		}
	}
	if teamID != 0 {
		if t, err = roster.FilterByTeam(t, teamID); err != nil {
			return nil, err
		}
	}

	res, err := s.aggregator.Compute(ctx, t)
	if err != nil {
		return nil, err
	}
	events, err := kpi.RawEvents(t)
	if err != nil {
		return nil, err
	}

	metrics.AddEventsClassified(t.Len())
	metrics.AddEventsByCategory(classify.Pass.String(), res.General.PasesTotales)
	metrics.AddEventsByCategory(classify.PassSuccessful.String(), res.General.PasesCompletados)
	return &kpi.Report{Result: res, Eventos: events}, nil
}

func (s *Service) canMerge(t *model.Table) bool {
	if _, ok := t.PlayerIDColumn(); !ok {
		return false
	}
	_, err := s.roster()
	return err == nil
}

// PeriodKPIs spools an uploaded match file and summarizes it per period.
func (s *Service) PeriodKPIs(ctx context.Context, filename string, r io.Reader) (map[string]kpi.PeriodSummary, error) {
	path, err := s.spool(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	defer s.discard(ctx, path)

	return s.FilePeriods(ctx, path)
}

// FilePeriods summarizes a match file on disk per period.
func (s *Service) FilePeriods(ctx context.Context, path string) (out map[string]kpi.PeriodSummary, err error) {
	start := time.Now()
	defer func() { s.record(ctx, kindPeriod, start, err) }()

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	t, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	metrics.AddEventsClassified(t.Len())
	return s.aggregator.PeriodSummaries(ctx, t)
}

func (s *Service) acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a processing slot: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, kind string, start time.Time, err error) {
	s.computations.Add(1)
	metrics.RecordComputationLatency(kind, float64(time.Since(start).Microseconds())/1000)
	if err == nil {
		metrics.RecordComputation(kind, "ok")
		return
	}
	s.failures.Add(1)
	k := Kind(err)
	metrics.RecordComputation(kind, k)
	metrics.RecordErrorByComponent("service", k)
	s.log().Warn(ctx, "kpi computation failed",
		logger.String("kind", kind),
		logger.String("errorKind", k),
		logger.Error(err),
	)
}

// spool copies an upload to a uniquely named file under the upload
// directory, enforcing the size limit.
func (s *Service) spool(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	f, err := os.CreateTemp(s.uploadDir, "upload-"+uuid.NewString()+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	path := f.Name()

	n, err := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	switch {
	case err != nil:
		s.discard(ctx, path)
		metrics.RecordUpload("error")
		return "", fmt.Errorf("store upload: %w", err)
	case n > s.maxUploadBytes:
		s.discard(ctx, path)
		metrics.RecordUpload("too_large")
		return "", fmt.Errorf("%w: limit is %d bytes", model.ErrTooLarge, s.maxUploadBytes)
	}
	metrics.RecordUpload("ok")
	metrics.RecordUploadBytes(n)
	s.log().Debug(ctx, "upload spooled", logger.String("path", path), logger.Int64("bytes", n))
	return path, nil
}

func (s *Service) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log().Warn(ctx, "removing upload", logger.String("path", path), logger.Error(err))
	}
}

// ObserveDiagnostics logs the tabulation of rows outside the first period.
func (s *Service) ObserveDiagnostics(ctx context.Context, d kpi.Diagnostics) {
	if d.Rows == 0 {
		return
	}
	l := s.log()
	l.Debug(ctx, "rows outside first period", logger.Int("rows", d.Rows), logger.Int("groups", len(d.Counts)))
	for _, c := range d.Counts {
		l.Debug(ctx, "period label count",
			logger.String("periodo", c.Period),
			logger.String("label", c.Label),
			logger.Int("count", c.Count),
		)
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"maxConcurrent":  s.maxConcurrent,
		"maxUploadBytes": s.maxUploadBytes,
		"computations":   s.computations.Load(),
		"failures":       s.failures.Load(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapBytes"] = mem.HeapAlloc
	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)

	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if s.store != nil {
			if teams, players, err := s.store.Count(context.Background()); err == nil {
				stats["teams"] = teams
				stats["players"] = players
				metrics.UpdateRosterSize(teams, players)
			}
		}
	}
	return stats
}
