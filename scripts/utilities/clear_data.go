//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Clears user activity while keeping the catalog. Useful between demo runs.
// Usage: DATABASE_URL=postgres://... go run scripts/utilities/clear_data.go
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

	fmt.Println("Clearing portfolios, history, and inference logs...")
	fmt.Println("Keeping: users, bank_products, youth_policies")
	fmt.Println()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("failed to start transaction: %v", err)
	}
	defer tx.Rollback()

	fmt.Print("Clearing user_portfolios... ")
	result, err := tx.Exec("DELETE FROM user_portfolios")
	if err != nil {
		log.Fatalf("failed to clear user_portfolios: %v", err)
	}
	portfolioCount, _ := result.RowsAffected()
	fmt.Printf("✓ %d rows deleted\n", portfolioCount)

	fmt.Print("Clearing recommendation_history... ")
	result, err = tx.Exec("DELETE FROM recommendation_history")
	if err != nil {
		log.Fatalf("failed to clear recommendation_history: %v", err)
	}
	historyCount, _ := result.RowsAffected()
	fmt.Printf("✓ %d rows deleted\n", historyCount)

	fmt.Print("Clearing inference_logs... ")
	result, err = tx.Exec("DELETE FROM inference_logs")
	if err != nil {
		log.Fatalf("failed to clear inference_logs: %v", err)
	}
	inferenceCount, _ := result.RowsAffected()
	fmt.Printf("✓ %d rows deleted\n", inferenceCount)

	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit transaction: %v", err)
	}

	fmt.Println()
	fmt.Printf("✓ Done: %d rows deleted\n", portfolioCount+historyCount+inferenceCount)
	fmt.Println("✓ Preserved: users, bank_products, youth_policies")
}
