//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Wipes every table including the catalog. Reseed with seed_users.go and
// cmd/preprocess afterwards.
// Usage: DATABASE_URL=postgres://... go run scripts/utilities/clear_db.go
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	queries := []string{
		"TRUNCATE TABLE user_portfolios CASCADE",
		"TRUNCATE TABLE recommendation_history CASCADE",
		"TRUNCATE TABLE inference_logs CASCADE",
		"TRUNCATE TABLE bank_products CASCADE",
		"TRUNCATE TABLE youth_policies CASCADE",
		"TRUNCATE TABLE users CASCADE",
	}

	for _, query := range queries {
		fmt.Printf("Executing: %s\n", query)
		if _, err := db.Exec(query); err != nil {
			log.Fatalf("failed to execute %s: %v", query, err)
		}
	}

	fmt.Println("✓ All catalog, user, and activity data cleared")
}
