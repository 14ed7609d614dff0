package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"petbot/internal/automod"
	"petbot/internal/battle"
	"petbot/internal/bot"
	"petbot/internal/common"
	"petbot/internal/config"
	"petbot/internal/pets"
	"petbot/internal/storage"
	"petbot/internal/tenor"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("petbot stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := common.SetupLogger(cfg.LogLevel, cfg.LogPretty); err != nil {
		return err
	}
	log.Info().Msg("Hello from inside petbot")

	ctx := context.Background()

	// Storage
	store, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Pet catalog
	catalog, err := pets.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d pets into the shop", len(catalog.Pets)))

	// Tenor is optional, without a key the unicorn stays quiet
	var gifClient *tenor.Client
	var gifs pets.GifSearcher
	if cfg.TenorKey != "" {
		gifClient = tenor.NewClient(cfg.TenorKey, cfg.TenorRestrictions(), cfg.TenorCacheTtl)
		gifs = gifClient
	} else {
		log.Warn().Msg("No tenor key configured, gifs are disabled")
	}

	arena := battle.NewArena(store, battle.DefaultRoller, cfg.ChallengeTimeout, cfg.IdleTimeout)
	trainer := pets.NewTrainer(store, gifs, battle.DefaultRoller)
	filter := automod.NewFilter(store, cfg.FilterCacheSize, cfg.FilterCacheTtl)

	settings := bot.Settings{
		Prefix:            cfg.Prefix,
		DailyReward:       cfg.DailyReward,
		DailyCooldown:     cfg.DailyCooldown,
		SweepPeriod:       cfg.SweepPeriod,
		TenorHousekeeping: cfg.TenorHousekeeping,
		MainCycle:         cfg.MainCycle,
	}
	petbot := bot.CreateBot(cfg.DiscordToken, settings, store, arena, trainer, filter, catalog, gifClient)

	start := time.Now()
	err = petbot.Run(ctx)
	log.Info().Msg(fmt.Sprintf("Ran for %s", time.Since(start).Round(time.Second)))
	return err
}
