// Seed script for creating demo data in beliefd.
// Run with: go run ./scripts/seed.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/probelab/beliefd/internal/domain"
	"github.com/probelab/beliefd/internal/store"
)

func main() {
	envFile := os.Getenv("BELIEFD_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	ctx := context.Background()
	models := store.NewModelStore(dataDir)
	graph := store.NewGraphStore(dataDir)
	plans := store.NewPlanCacheStore(dataDir)

	fmt.Println("Seeding demo data into", dataDir)

	login := &domain.MentalModel{
		Title:      "Login retries on transient 5xx",
		Domain:     domain.DomainSoftwareQA,
		Tags:       []string{"login", "retries"},
		Summary:    "The login form silently retries up to three times on 5xx responses before surfacing an error banner.",
		Confidence: 0.6,
		FailureModes: []string{
			"retry storm when the auth backend is degraded",
			"error banner hidden behind the cookie dialog",
		},
		EvidenceIDs: []string{"obs-seed-1", "obs-seed-2"},
	}
	must(models.Create(ctx, login))
	fmt.Println("  model:", login.ID, "-", login.Title)

	session := &domain.MentalModel{
		Title:       "Session cookies expire after one hour",
		Domain:      domain.DomainSoftwareQA,
		Tags:        []string{"session", "auth"},
		Summary:     "Authenticated sessions are invalidated server-side sixty minutes after issue regardless of activity.",
		Confidence:  0.75,
		EvidenceIDs: []string{"obs-seed-3"},
	}
	must(models.Create(ctx, session))
	fmt.Println("  model:", session.ID, "-", session.Title)

	edge := &domain.GraphEdge{
		FromModel:   login.ID,
		ToModel:     session.ID,
		Relation:    domain.RelationDependsOn,
		Weight:      0.8,
		EvidenceIDs: []string{"obs-seed-2"},
	}
	must(graph.Create(ctx, edge))
	fmt.Println("  edge:", edge.ID, string(edge.Relation))

	plan := &domain.CachedPlan{
		Plan: []domain.PlanStep{
			{Description: "navigate to /login"},
			{Description: "fill credentials from the test fixture"},
			{Description: "submit and wait for the dashboard redirect"},
		},
		URLDomain:     "example.com",
		URL:           "https://example.com/login",
		GoalKeywords:  []string{"flow", "login", "test"},
		Goal:          "Test login flow",
		TimesExecuted: 1,
		LastPassed:    3,
		SuccessRate:   1.0,
		SourceRunID:   "seed",
	}
	must(plans.Create(ctx, plan))
	fmt.Println("  plan:", plan.ID, "-", plan.Goal)

	fmt.Println("Done.")
}

func must(err error) {
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}
