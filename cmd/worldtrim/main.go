package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/OCharnyshevich/worldtrim/internal/backup"
	"github.com/OCharnyshevich/worldtrim/internal/config"
	"github.com/OCharnyshevich/worldtrim/internal/report"
	"github.com/OCharnyshevich/worldtrim/internal/stage"
	"github.com/OCharnyshevich/worldtrim/internal/world"
)

func main() {
	var (
		worldDir  = flag.String("world", ".", "path to the world directory")
		configSrc = flag.String("config", "", "config file or go-getter source (default <world>/"+config.DefaultFile+")")
		all       = flag.Bool("all", false, "enable all stages")
		relocate  = flag.Bool("relocate-players", false, "apply the configured out-of-bounds player policy")
		deleteOpt = flag.Bool("delete-chunks", false, "delete all chunks outside the persistent areas")
		blending  = flag.Bool("force-blending", false, "force blending on the border chunks of every persistent area")
		randomize = flag.Bool("randomize-seed", false, "randomize the world seed")
		setSeed   = flag.Int64("set-seed", 0, "set the world seed to this value")
		restore   = flag.Bool("restore", false, "restore region files from the backup archive and exit")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	var fromFlags config.Config
	flag.StringVar(&fromFlags.Backup, "backup", "", "directory to archive region files into before they change")
	flag.StringVar(&fromFlags.Report, "report", "", "SQLite file to record the run in")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src := *configSrc
	if src == "" {
		src = filepath.Join(*worldDir, config.DefaultFile)
	}
	cfg, err := config.Load(ctx, src)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, &fromFlags, explicit)

	w := world.New(*worldDir, log)

	if *restore {
		if cfg.Backup == "" {
			log.Error("restore needs a backup directory")
			os.Exit(1)
		}
		if _, err := stage.Restore(w, backup.New(cfg.Backup, log), log); err != nil {
			log.Error("restore failed", "error", err)
			os.Exit(1)
		}
		return
	}

	stages := stage.Stages{
		RelocatePlayers: *relocate,
		DeleteChunks:    *deleteOpt,
		ForceBlending:   *blending,
		RandomizeSeed:   *randomize,
	}
	if *all {
		stages = stage.AllStages()
	}
	if explicit["set-seed"] {
		stages.SetSeed = setSeed
	}

	runner := &stage.Runner{
		World:  w,
		Config: cfg,
		Log:    log,
	}
	if cfg.Backup != "" {
		runner.Backup = backup.New(cfg.Backup, log)
	}
	if cfg.Report != "" {
		ledger, err := report.Open(cfg.Report)
		if err != nil {
			log.Error("open report", "error", err)
			os.Exit(1)
		}
		defer ledger.Close()
		runner.Report = ledger
	}

	if err := runner.Run(ctx, stages); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
	log.Info("done", "world", *worldDir)
}
