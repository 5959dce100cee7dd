package cli

import (
	"fmt"
	"time"

	"github.com/harun/mnemo/internal/config"
	"github.com/harun/mnemo/internal/logger"
	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/ingest"
	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/rollup"
	"github.com/harun/mnemo/pkg/tiers"
	"github.com/harun/mnemo/pkg/vectorstore"
)

// app holds the wired component graph shared by all commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	store     *vectorstore.SQLiteStore
	archive   *archive.Store
	tierStore *tiers.Store

	embedder  oracle.EmbeddingOracle
	compactor oracle.CompactionOracle
	engine    *retrieval.Engine
	tiers     *tiers.Manager
	rollups   *rollup.Scheduler
	pipeline  *ingest.Pipeline

	timeout time.Duration
}

// newApp loads configuration and wires every component
func newApp() (*app, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	zl := log.GetZerolog()

	embedder := oracle.NewOpenAIEmbedder(cfg.Oracle.OpenAIAPIKey, cfg.Oracle.EmbeddingModel)

	var compactor oracle.CompactionOracle
	switch cfg.Oracle.Provider {
	case "anthropic":
		compactor = oracle.NewAnthropicCompactor(cfg.Oracle.AnthropicAPIKey, cfg.Oracle.CompactionModel)
	default:
		compactor = oracle.NewOpenAICompactor(cfg.Oracle.OpenAIAPIKey, cfg.Oracle.CompactionModel)
	}

	store, err := vectorstore.NewSQLiteStore(vectorstore.Config{
		DBPath:    cfg.VectorDBPath(),
		Dimension: embedder.Dimension(),
		Logger:    zl,
	})
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	archiveStore, err := archive.NewStore(cfg.ArchiveDir(), zl)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	tierStore, err := tiers.NewStore(cfg.TiersDir(), zl)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	engine := retrieval.NewEngine(store, embedder, zl)
	summarizer := archive.NewSummarizer(compactor, archiveStore, zl)
	tierManager := tiers.NewManager(tierStore, compactor, archiveStore, tiers.Config{
		ProfileCeiling:   cfg.Tiers.ProfileCeiling,
		DigestCeiling:    cfg.Tiers.DigestCeiling,
		DigestTargetLow:  cfg.Tiers.DigestTargetLow,
		DigestTargetHigh: cfg.Tiers.DigestTargetHigh,
		HorizonDays:      cfg.Tiers.HorizonDays,
		MaxOracleCalls:   cfg.Tiers.MaxOracleCalls,
	}, zl)
	scheduler := rollup.NewScheduler(archiveStore, compactor, embedder, engine, zl)
	pipeline := ingest.NewPipeline(summarizer, embedder, engine, tierManager, scheduler, zl)

	timeout := time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		archive:   archiveStore,
		tierStore: tierStore,
		embedder:  embedder,
		compactor: compactor,
		engine:    engine,
		tiers:     tierManager,
		rollups:   scheduler,
		pipeline:  pipeline,
		timeout:   timeout,
	}, nil
}

func (a *app) close() {
	a.tierStore.Close()
	a.store.Close()
	a.log.Close()
}
