// Package pipeline assembles the full recognizer: keyword tables,
// pattern grammar, conversion almanac, scanner, resolver,
// deduplicator, and renderer behind one Process call. An Engine is
// immutable after New and safe for concurrent use; independent
// documents need no coordination.
package pipeline

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/config"
	"github.com/muwaqqit/tarikh/pkg/dedupe"
	"github.com/muwaqqit/tarikh/pkg/extract"
	"github.com/muwaqqit/tarikh/pkg/grammar"
	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/render"
	"github.com/muwaqqit/tarikh/pkg/resolve"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Engine runs the recognition passes over one document at a time.
type Engine struct {
	cfg      *config.Config
	log      *zap.Logger
	tables   *keywords.Tables
	set      *grammar.Set
	almanac  *almanac.Service
	scanner  *extract.Scanner
	resolver *resolve.Resolver
	renderer *render.Renderer
}

// Option adjusts an Engine during New.
type Option func(*Engine)

// WithLogger installs a logger. The default is a nop logger, so
// library use stays silent unless asked otherwise.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Result is the outcome of one document pass.
type Result struct {
	Entities []types.Entity `json:"entities"`
	Matches  int            `json:"matches"`
}

// New loads every table the recognizer needs and wires the stages.
// Startup failures are collected and reported in one error; a
// partially working engine is never returned.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	var startup []string
	if err := cfg.Validate(); err != nil {
		startup = append(startup, err.Error())
	}

	tables, err := loadTables(cfg)
	if err != nil {
		startup = append(startup, err.Error())
	}
	e.tables = tables

	if e.tables != nil {
		set, err := grammar.Build(e.tables, cfg.LanguageList())
		if err != nil {
			startup = append(startup, err.Error())
		}
		e.set = set
	}

	svc, err := loadAlmanac(cfg)
	if err != nil {
		startup = append(startup, err.Error())
	}
	e.almanac = svc

	if e.set != nil && e.tables != nil {
		scanner, err := extract.NewScanner(e.set, e.tables, extract.Options{
			MaxInputLength:  cfg.MaxInputLength,
			MatchStepBudget: cfg.MatchStepBudget,
		})
		if err != nil {
			startup = append(startup, err.Error())
		}
		e.scanner = scanner
	}

	if e.almanac != nil {
		resolver, err := resolve.NewResolver(e.almanac, resolve.Options{
			AltToleranceDays:     cfg.AltToleranceDays,
			AutoCorrectMaxDays:   cfg.AutoCorrectMaxDays,
			FinancialStartMonths: cfg.FinancialYearStartMonths,
			FinancialEndMonths:   cfg.FinancialYearEndMonths,
			DefaultCalendar:      cfg.Calendar(),
		})
		if err != nil {
			startup = append(startup, err.Error())
		}
		e.resolver = resolver
	}

	if e.tables != nil {
		renderer, err := render.New(e.tables)
		if err != nil {
			startup = append(startup, err.Error())
		}
		e.renderer = renderer
	}

	if len(startup) > 0 {
		return nil, fmt.Errorf("starting recognizer: %s", strings.Join(startup, "; "))
	}

	lo, hi := e.almanac.Range()
	e.log.Info("recognizer ready",
		zap.Int("patterns", e.set.Len()),
		zap.Int("almanac_rows", e.almanac.Len()),
		zap.String("almanac_from", lo.String()),
		zap.String("almanac_to", hi.String()),
		zap.Strings("languages", cfg.Languages),
	)
	return e, nil
}

func loadTables(cfg *config.Config) (*keywords.Tables, error) {
	if cfg.KeywordPackDir != "" {
		return keywords.LoadWithOverrides(cfg.KeywordPackDir)
	}
	return keywords.Load()
}

func loadAlmanac(cfg *config.Config) (*almanac.Service, error) {
	if cfg.AlmanacPath != "" {
		f, err := os.Open(cfg.AlmanacPath)
		if err != nil {
			return nil, fmt.Errorf("opening almanac %s: %w", cfg.AlmanacPath, err)
		}
		defer f.Close()
		svc, err := almanac.Load(f)
		if err != nil {
			return nil, fmt.Errorf("loading almanac %s: %w", cfg.AlmanacPath, err)
		}
		return svc, nil
	}
	return almanac.New(almanac.Options{
		StartYear: cfg.AlmanacFromYear,
		EndYear:   cfg.AlmanacToYear,
	})
}

// Almanac exposes the conversion service behind the engine, for
// callers that need direct conversions next to extraction.
func (e *Engine) Almanac() *almanac.Service { return e.almanac }

// Process runs scan, resolve, dedupe, and render over one document
// and returns the surviving entities in reading order. Inputs over
// the configured byte limit are refused rather than cut short.
func (e *Engine) Process(text string) (Result, error) {
	if e.cfg.MaxInputLength > 0 && len(text) > e.cfg.MaxInputLength {
		return Result{}, fmt.Errorf("input is %d bytes, over the %d byte limit", len(text), e.cfg.MaxInputLength)
	}

	ms := e.scanner.Scan(text)
	if e.cfg.MatchStepBudget > 0 && len(ms) >= e.cfg.MatchStepBudget {
		e.log.Warn("candidate budget reached, later dates may be missing",
			zap.Int("matches", len(ms)),
			zap.Int("budget", e.cfg.MatchStepBudget),
		)
	}

	entities := e.resolver.Resolve(ms)
	entities = dedupe.Dedupe(entities, e.cfg.DedupToleranceDays, e.cfg.Policy())
	for i := range entities {
		entities[i].Rendered = e.renderer.Render(&entities[i])
	}

	e.log.Debug("document processed",
		zap.Int("bytes", len(text)),
		zap.Int("matches", len(ms)),
		zap.Int("entities", len(entities)),
	)
	return Result{Entities: entities, Matches: len(ms)}, nil
}
