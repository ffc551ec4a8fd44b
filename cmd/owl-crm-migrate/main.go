package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"owl-crm/common/database"
	"owl-crm/internal/config"
	"owl-crm/internal/repository"
)

func main() {
	printOnly := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		fmt.Print(repository.Schema())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n", cfg.Database.Database)
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migration applied")
}
