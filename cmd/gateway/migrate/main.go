package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chainsafe/canton-ledger-gateway/pkg/config"
	"github.com/chainsafe/canton-ledger-gateway/pkg/migrations/gatewaydb"
	"github.com/chainsafe/canton-ledger-gateway/pkg/pgutil"
	mghelper "github.com/chainsafe/canton-ledger-gateway/pkg/pgutil/migrations"

	"github.com/uptrace/bun/migrate"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, mghelper.UsageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	ctx := context.Background()
	db, err := pgutil.ConnectDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for gateway database (%s)...\n", cfg.Database.Database)

	migrator := migrate.NewMigrator(db, gatewaydb.Migrations)
	if err := mghelper.RunMigrations(ctx, migrator, os.Stdout, flag.Args()...); err != nil {
		log.Printf("migration failed: %s", err.Error())
		flag.Usage()
		os.Exit(1)
	}
}
