//go:build ignore

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/youthfin/yofin/internal/database"
	"github.com/youthfin/yofin/internal/models"
)

// Seeds the users table with the same sample profiles the mock gateway
// serves, so a live database answers for user1/user2/user3 too.
// Usage: DATABASE_URL=postgres://... go run scripts/utilities/seed_users.go
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

	now := time.Now()
	profiles := []models.UserProfile{
		{
			UserID:               "user1",
			Name:                 "Kim Minjun",
			Age:                  25,
			IncomeLevel:          "middle",
			TotalAssets:          10_000_000,
			InvestmentPreference: models.PreferenceNeutral,
			InterestAreas:        []string{"savings", "funds"},
			RiskTolerance:        6,
			InvestmentGoal:       "seed money",
			InvestmentHorizon:    "3 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		{
			UserID:               "user2",
			Name:                 "Lee Seoyeon",
			Age:                  30,
			IncomeLevel:          "high",
			TotalAssets:          50_000_000,
			InvestmentPreference: models.PreferenceAggressive,
			InterestAreas:        []string{"funds", "stocks"},
			RiskTolerance:        8,
			InvestmentGoal:       "wealth growth",
			InvestmentHorizon:    "5 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		{
			UserID:               "user3",
			Name:                 "Park Jihoon",
			Age:                  28,
			IncomeLevel:          "middle",
			TotalAssets:          20_000_000,
			InvestmentPreference: models.PreferenceConservative,
			InterestAreas:        []string{"deposits", "savings"},
			RiskTolerance:        3,
			InvestmentGoal:       "housing deposit",
			InvestmentHorizon:    "2 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
	}

	repo := database.NewUserRepository(db)
	ctx := context.Background()

	for _, profile := range profiles {
		fmt.Printf("Upserting %s (%s)... ", profile.UserID, profile.Name)
		if err := repo.Upsert(ctx, profile); err != nil {
			log.Fatalf("failed to upsert %s: %v", profile.UserID, err)
		}
		fmt.Println("✓")
	}

	fmt.Printf("\n✓ Seeded %d user profiles\n", len(profiles))
}
