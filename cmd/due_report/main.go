package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"maintenance/internal/config"
	"maintenance/internal/database"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/pkg/logger"
	"maintenance/internal/repository"
)

func main() {
	out := flag.String("out", "", "output .xlsx path (default due-YYYY-MM-DD.xlsx)")
	at := flag.String("at", "", "evaluate as of this date (YYYY-MM-DD), default now")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	now := time.Now()
	if *at != "" {
		now, err = time.ParseInLocation("2006-01-02", *at, time.Local)
		if err != nil {
			log.WithError(err).Fatal("invalid -at date")
		}
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("due-%s.xlsx", now.Format("2006-01-02"))
	}

	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{MaxOpenConns: 2}, false, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	svc := schedule.NewService(repository.NewTaskRepository(db), repository.NewEquipmentRepository(db), log)

	f, err := os.Create(path)
	if err != nil {
		log.WithError(err).Fatal("create report file")
	}
	if err := svc.ExportDue(context.Background(), f, now); err != nil {
		_ = f.Close()
		log.WithError(err).Fatal("export due report")
	}
	if err := f.Close(); err != nil {
		log.WithError(err).Fatal("close report file")
	}

	log.WithField("path", path).WithField("as_of", now.Format(time.RFC3339)).Info("due report written")
}
