package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/payrollhq/payroll-system/internal/infrastructure/config"
	"github.com/payrollhq/payroll-system/internal/infrastructure/db/postgres"
	"github.com/payrollhq/payroll-system/pkg/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [up|down|version]\n")
	}
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	log := logger.New(logger.Options{Pretty: true, Service: "payroll-migrate"})

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	if err := run(action, cfg.Postgres.URL); err != nil {
		log.Error().Err(err).Str("action", action).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Str("action", action).Msg("migration completed")
}

func run(action, dsn string) error {
	m, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
