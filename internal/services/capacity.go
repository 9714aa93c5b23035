package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"capacity-bknd/internal/capacity"
	"capacity-bknd/internal/config"
	"capacity-bknd/internal/metrics"
	"capacity-bknd/internal/models"
	"capacity-bknd/internal/sources"
)

var (
	// ErrDatabaseUnavailable is returned by database runs when no Postgres
	// source is configured.
	ErrDatabaseUnavailable = errors.New("database source not configured")

	// ErrInvalidUpload wraps any failure to read an uploaded table.
	ErrInvalidUpload = errors.New("invalid upload")
)

const (
	sourceUpload   = "upload"
	sourceDatabase = "database"
)

// TableSource runs a query and returns the result set as a table.
type TableSource interface {
	Query(ctx context.Context, name, query string) (*models.Table, error)
}

// Upload is one uploaded input file.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Run is a finished reconciliation together with the parsed generation
// records the detail report is built from.
type Run struct {
	Result     *models.ReconcileResult
	Generation []models.GenerationRecord
	FinishedAt time.Time
}

type CapacityService struct {
	engine  *capacity.Engine
	cfg     *config.Config
	db      TableSource
	metrics *metrics.Registry
	logr    *zap.Logger
	now     func() time.Time
}

// NewCapacityService wires the engine to its table sources. db may be nil
// when no database is configured.
func NewCapacityService(cfg *config.Config, db TableSource, reg *metrics.Registry, logr *zap.Logger) *CapacityService {
	return &CapacityService{
		engine:  capacity.NewEngine(EngineOptions(cfg)),
		cfg:     cfg,
		db:      db,
		metrics: reg,
		logr:    logr,
		now:     time.Now,
	}
}

// EngineOptions maps configuration onto engine options.
func EngineOptions(cfg *config.Config) capacity.Options {
	return capacity.Options{
		Equipment: capacity.EquipmentColumns{
			Substation:   cfg.EquipmentSubstationCol,
			Transformer:  cfg.EquipmentTransformerCol,
			Capacity:     cfg.EquipmentCapacityCol,
			Applies:      cfg.EquipmentAppliesCol,
			FeederPrefix: cfg.FeederColumnPrefix,
		},
		Generation: capacity.GenerationColumns{
			Substation: cfg.GenerationSubstationCol,
			Feeder:     cfg.GenerationFeederCol,
			Power:      cfg.GenerationPowerCol,
			Status:     cfg.GenerationStatusCol,
			ProcessID:  cfg.GenerationProcessIDCol,
			Owner:      cfg.GenerationOwnerCol,
			Commune:    cfg.GenerationCommuneCol,
			PoleID:     cfg.GenerationPoleIDCol,
		},
		AppliesTokens:    cfg.AppliesTokens,
		SubstationMarker: cfg.SubstationMarker,
	}
}

// ReconcileUploads reads both uploaded files concurrently and reconciles them.
// A cancelled context stops the run before a file is parsed.
func (s *CapacityService) ReconcileUploads(ctx context.Context, equipment, generation Upload) (*Run, error) {
	var eq, gen *models.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.readUpload(gctx, "equipment", equipment, s.cfg.EquipmentSheet)
		eq = t
		return err
	})
	g.Go(func() error {
		t, err := s.readUpload(gctx, "generation", generation, s.cfg.GenerationSheet)
		gen = t
		return err
	})
	if err := g.Wait(); err != nil {
		outcome := "invalid_input"
		if ctx.Err() != nil {
			outcome = "canceled"
		}
		s.metrics.RunsTotal.WithLabelValues(sourceUpload, outcome).Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.metrics.RunsTotal.WithLabelValues(sourceUpload, "canceled").Inc()
		return nil, err
	}

	return s.run(sourceUpload, eq, gen)
}

// ReconcileDatabase loads both tables from Postgres and reconciles them.
func (s *CapacityService) ReconcileDatabase(ctx context.Context) (*Run, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var eq, gen *models.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer s.observeLoad(sourceDatabase, "equipment", time.Now())
		t, err := s.db.Query(gctx, "equipment", s.cfg.EquipmentQuery)
		eq = t
		return err
	})
	g.Go(func() error {
		defer s.observeLoad(sourceDatabase, "generation", time.Now())
		t, err := s.db.Query(gctx, "generation", s.cfg.GenerationQuery)
		gen = t
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.RunsTotal.WithLabelValues(sourceDatabase, "error").Inc()
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	return s.run(sourceDatabase, eq, gen)
}

// Details lists the generation records of the requested substations. With
// no request every substation with available capacity is listed.
func (s *CapacityService) Details(run *Run, requested []string) []models.SubstationDetail {
	return s.engine.Details(run.Result, run.Generation, requested)
}

func (s *CapacityService) readUpload(ctx context.Context, table string, u Upload, sheet string) (*models.Table, error) {
	defer s.observeLoad(sourceUpload, table, time.Now())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u.Body == nil {
		return nil, fmt.Errorf("%w: missing %s file", ErrInvalidUpload, table)
	}
	t, err := sources.Read(u.Body, u.Filename, sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidUpload, table, err)
	}
	return t, nil
}

func (s *CapacityService) run(source string, equipment, generation *models.Table) (*Run, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.logr.With(zap.String("run_id", runID), zap.String("source", source))

	res, gen, err := s.engine.ReconcileTables(equipment, generation)
	if err != nil {
		var colErr *capacity.ColumnError
		if errors.As(err, &colErr) {
			s.metrics.RunsTotal.WithLabelValues(source, "missing_column").Inc()
			log.Warn("reconciliation rejected",
				zap.String("table", colErr.Table),
				zap.String("column", colErr.Column))
			return nil, err
		}
		s.metrics.RunsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}

	res.RunID = runID
	d := res.Diagnostics

	s.metrics.RunsTotal.WithLabelValues(source, "ok").Inc()
	s.metrics.RunDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	s.metrics.CoercedCellsTotal.Add(float64(d.CoercedCells))
	s.metrics.UnmatchedGeneration.Add(float64(d.UnmatchedGeneration))
	s.metrics.SummaryRows.Set(float64(len(res.Rows)))
	s.metrics.SubstationsWithRoom.Set(float64(len(res.SubstationsWithCapacity)))

	if d.CoercedCells > 0 {
		log.Warn("numeric cells coerced to zero", zap.Int("cells", d.CoercedCells))
	}
	if d.UnmatchedGeneration > 0 {
		log.Debug("generation rows without a valid substation and feeder",
			zap.Int("rows", d.UnmatchedGeneration))
	}
	log.Info("reconciliation finished",
		zap.Int("equipment_rows", d.EquipmentRows),
		zap.Int("generation_rows", d.GenerationRows),
		zap.Int("groups", d.Groups),
		zap.Int("substations_with_capacity", len(res.SubstationsWithCapacity)),
		zap.Duration("took", time.Since(start)))

	return &Run{Result: res, Generation: gen, FinishedAt: s.now()}, nil
}

func (s *CapacityService) observeLoad(source, table string, start time.Time) {
	s.metrics.SourceLoadDuration.WithLabelValues(source, table).Observe(time.Since(start).Seconds())
}
