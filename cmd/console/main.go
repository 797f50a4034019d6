package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/royal-chronicle/internal/config"
	"github.com/jwebster45206/royal-chronicle/internal/logger"
	"github.com/jwebster45206/royal-chronicle/internal/storage"
	"github.com/jwebster45206/royal-chronicle/pkg/engine"
	"github.com/jwebster45206/royal-chronicle/pkg/event"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	reg, err := event.LoadRegistry(cfg.ContentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := engine.New(reg, engine.Config{
		RandomEventChance:   cfg.RandomEventChance,
		TemplateEventChance: cfg.TemplateEventChance,
		BankruptcyDays:      cfg.BankruptcyDays,
	}, engine.NewRand(seed), log)

	st := world.NewState()
	st.HistoryCap = cfg.HistoryCap
	log.Info("new playthrough", "playthrough_id", st.ID, "seed", seed)

	var autosave *storage.AutosaveStore
	if cfg.RedisAddr != "" {
		autosave = storage.NewAutosaveStore(cfg.RedisAddr, log)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := autosave.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn("autosave disabled, redis unreachable", "addr", cfg.RedisAddr, "error", err)
			autosave = nil
		}
	}

	slots, err := storage.NewSlotStore(cfg.SavePath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open save database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = slots.Close()
	}()

	p := tea.NewProgram(NewConsoleUI(eng, st, autosave, slots),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
