//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Prints a quick snapshot of the catalog and recommendation activity.
// Usage: DATABASE_URL=postgres://... go run scripts/utilities/check_catalog.go
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

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM bank_products WHERE is_active = true").Scan(&count)
	if err != nil {
		log.Fatalf("failed to count products: %v", err)
	}
	fmt.Printf("Active products: %d\n", count)

	rows, err := db.Query(`
		SELECT product_code, product_name, product_type, interest_rate, updated_at
		FROM bank_products
		WHERE is_active = true
		ORDER BY updated_at DESC
		LIMIT 5
	`)
	if err != nil {
		log.Fatalf("failed to query products: %v", err)
	}
	defer rows.Close()

	fmt.Println("\nRecently updated products:")
	for rows.Next() {
		var code, name, productType string
		var rate float64
		var updatedAt time.Time
		if err := rows.Scan(&code, &name, &productType, &rate, &updatedAt); err != nil {
			log.Printf("error scanning row: %v", err)
			continue
		}
		fmt.Printf("- %s: %s (type: %s, rate: %.2f%%, updated: %s)\n",
			code, name, productType, rate, updatedAt.Format("2006-01-02 15:04"))
	}

	err = db.QueryRow("SELECT COUNT(*) FROM youth_policies WHERE is_active = true").Scan(&count)
	if err != nil {
		log.Fatalf("failed to count policies: %v", err)
	}
	fmt.Printf("\nActive policies: %d\n", count)

	err = db.QueryRow("SELECT COUNT(*) FROM recommendation_history").Scan(&count)
	if err != nil {
		log.Fatalf("failed to count history: %v", err)
	}
	fmt.Printf("Recommendation history rows: %d\n", count)

	err = db.QueryRow("SELECT COUNT(*) FROM inference_logs").Scan(&count)
	if err != nil {
		log.Fatalf("failed to count inference logs: %v", err)
	}
	fmt.Printf("Inference log rows: %d\n", count)
}
