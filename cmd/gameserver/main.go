// Package main provides the game server binary: it loads content, connects
// to PostgreSQL, and runs the periodic economy schedulers around the rules
// engine service.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/config"
	"github.com/cory-johannsen/runehall/internal/game/dice"
	"github.com/cory-johannsen/runehall/internal/game/encounter"
	"github.com/cory-johannsen/runehall/internal/game/item"
	"github.com/cory-johannsen/runehall/internal/game/monster"
	"github.com/cory-johannsen/runehall/internal/game/refdata"
	"github.com/cory-johannsen/runehall/internal/gamesvc"
	"github.com/cory-johannsen/runehall/internal/observability"
	"github.com/cory-johannsen/runehall/internal/scripting"
	"github.com/cory-johannsen/runehall/internal/server"
	"github.com/cory-johannsen/runehall/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewLoggedSource(dice.NewCryptoSource(), logger)

	// Load content: reference data, item catalog, monster templates.
	contentStart := time.Now()
	registry, err := refdata.Load(cfg.Content.RacesPath, cfg.Content.ClassesPath)
	if err != nil {
		logger.Fatal("loading reference data", zap.Error(err))
	}
	defs, err := item.LoadDefs(cfg.Content.ItemsPath)
	if err != nil {
		logger.Fatal("loading item catalog", zap.Error(err))
	}
	monsters, err := monster.LoadTemplatesFromDir(cfg.Content.MonstersDir)
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("item_defs", len(defs)),
		zap.Int("monsters", len(monsters)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Operator Lua policy scripts are optional.
	var host *scripting.Host
	if cfg.Content.ScriptsDir != "" {
		host = scripting.NewHost(src, logger)
		if err := host.Load(cfg.Content.ScriptsDir, cfg.Content.ScriptInstLimit); err != nil {
			logger.Fatal("loading policy scripts", zap.Error(err))
		}
		defer host.Close()
		logger.Info("policy scripts loaded", zap.String("dir", cfg.Content.ScriptsDir))
	}

	templates := make([]*monster.Template, 0, len(monsters))
	for _, tmpl := range monsters {
		templates = append(templates, tmpl)
	}
	selector, err := encounter.NewSelector(templates, cfg.Game.Encounter, host)
	if err != nil {
		logger.Fatal("building encounter selector", zap.Error(err))
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	svc := gamesvc.New(pool, registry, defs, monsters, selector, src, cfg.Game, logger)

	sched := server.NewScheduler(logger)
	sched.Add(server.Job{
		Name:     "stock-variation",
		Interval: cfg.Scheduler.StockVariationInterval,
		Run:      svc.VaryStockPrices,
	})
	sched.Add(server.Job{
		Name:     "daily-reset",
		Interval: cfg.Scheduler.DailyResetInterval,
		Run: func(ctx context.Context) error {
			_, err := svc.ResetDailyCounters(ctx)
			return err
		},
	})

	logger.Info("game server ready", zap.Duration("startup", time.Since(start)))
	if err := sched.Run(ctx); err != nil {
		logger.Fatal("scheduler error", zap.Error(err))
	}
}
