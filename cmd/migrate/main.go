package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/migrate"
)

type flags struct {
	cmd          string
	dir          string
	name         string
	version      string
	tables       int
	capacity     int
	businessName string
	exchangeRate string
}

type env struct {
	cfg      *config.Config
	client   *db.Client
	migrator *migrate.Migrator
}

type command struct {
	needsDB bool
	run     func(ctx context.Context, f flags, e env) error
}

var commands = map[string]command{
	"up": {needsDB: true, run: func(ctx context.Context, _ flags, e env) error {
		applied, err := e.migrator.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("applied %d migrations\n", applied)
		return nil
	}},
	"down": {needsDB: true, run: func(ctx context.Context, _ flags, e env) error {
		return e.migrator.Down(ctx)
	}},
	"status": {needsDB: true, run: status},
	"version": {needsDB: true, run: func(ctx context.Context, f flags, e env) error {
		if f.version == "" {
			return errors.New("missing -version for version command")
		}
		return e.migrator.To(ctx, f.version)
	}},
	"create": {run: func(_ context.Context, f flags, _ env) error {
		if f.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(f.dir, f.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	}},
	"validate": {run: func(_ context.Context, f flags, _ env) error {
		source, err := migrate.Source(f.dir)
		if err != nil {
			return err
		}
		if err := migrate.ValidateFS(source); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}},
	"seed": {needsDB: true, run: seed},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.cmd, "cmd", "up", "command: up|down|status|version|create|validate|seed")
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name (for create)")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.IntVar(&f.tables, "tables", 10, "number of dining tables to seed")
	flag.IntVar(&f.capacity, "capacity", 4, "seats per seeded table")
	flag.StringVar(&f.businessName, "business-name", "", "business name for the seeded settings row")
	flag.StringVar(&f.exchangeRate, "exchange-rate", "4100", "riel per USD for the seeded settings row")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": f.cmd,
		"dir": f.dir,
	})

	if err := run(ctx, f, cfg, logg); err != nil {
		logg.Error(ctx, "migrate failed", err)
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", f.cmd, err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate done")
}

func run(ctx context.Context, f flags, cfg *config.Config, logg *logger.Logger) (err error) {
	cmd, ok := commands[f.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd value %q", f.cmd)
	}
	if !cmd.needsDB {
		return cmd.run(ctx, f, env{cfg: cfg})
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, client.Close())
	}()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	source, err := migrate.Source(f.dir)
	if err != nil {
		return err
	}
	migrator, err := migrate.New(sqlDB, source)
	if err != nil {
		return err
	}
	return cmd.run(ctx, f, env{cfg: cfg, client: client, migrator: migrator})
}

func status(ctx context.Context, _ flags, e env) error {
	statuses, err := e.migrator.Status(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		state := "pending"
		if st.Applied {
			state = "applied"
		}
		fmt.Printf("%d\t%s\t%s\n", st.Version, state, st.Path)
	}
	return nil
}

func seed(ctx context.Context, f flags, e env) error {
	exchangeRate, err := decimal.NewFromString(f.exchangeRate)
	if err != nil {
		return fmt.Errorf("invalid -exchange-rate %q: %w", f.exchangeRate, err)
	}
	result, err := migrate.Seed(ctx, e.client.DB(), migrate.SeedOptions{
		Tables:       f.tables,
		Capacity:     f.capacity,
		BusinessName: f.businessName,
		VATRate:      e.cfg.Settings.VATRate(),
		ExchangeRate: exchangeRate,
	})
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d tables, settings created: %t\n", result.TablesCreated, result.SettingsCreated)
	return nil
}
