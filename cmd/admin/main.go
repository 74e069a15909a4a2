package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shaheen-admin/internal/config"
	"shaheen-admin/internal/i18n"
	"shaheen-admin/internal/store"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetOutput(os.Stdout)

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		return 1
	}

	if err := config.LoadEnv(); err != nil {
		logger.Printf("error: %v", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Printf("error: %v", err)
		return 1
	}
	if err := i18n.Init(cfg.Locale); err != nil {
		logger.Printf("error: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Printf("error: %v", err)
		return 1
	}
	db.UseTransactions = cfg.UseTransactions
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Printf("close mongodb: %v", err)
		}
	}()

	stores, err := mongoStores(ctx, db, cfg.Rules.Calendar().Location())
	if err != nil {
		logger.Printf("error: %v", err)
		return 1
	}

	cli := newCommandLine(cfg, stores, os.Stdout)
	if err := cli.run(i18n.WithLocale(ctx, cfg.Locale), os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Printf("error: %v", err)
		}
		return 1
	}
	return 0
}

func mongoStores(ctx context.Context, db *store.MongoDB, loc *time.Location) (stores, error) {
	attendance, err := store.NewAttendanceStore(ctx, db, loc)
	if err != nil {
		return stores{}, err
	}
	certs, err := store.NewCertificateStore(ctx, db)
	if err != nil {
		return stores{}, err
	}
	return stores{
		students:   store.NewStudentStore(db),
		attendance: attendance,
		certs:      certs,
		volunteers: store.NewUserStore(db),
		masjids:    store.NewMasjidStore(db),
		winners:    store.NewWinnerStore(db),
		tx:         db,
	}, nil
}
