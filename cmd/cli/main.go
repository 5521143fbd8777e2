package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/reviewhub/internal/server/admin"
	"github.com/dmitrijs2005/reviewhub/internal/server/config"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
)

func main() {
	args := os.Args[1:]

	cfg, err := config.Load(args)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := admin.Run(ctx, args, os.Stdout, repomanager.NewPostgresRepositoryManager(), db); err != nil {
		log.Printf("%v", err)
		db.Close()
		os.Exit(1)
	}
}
