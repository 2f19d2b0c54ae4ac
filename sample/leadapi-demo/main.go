package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/luminacrm/lumina/internal/cache"
	"github.com/luminacrm/lumina/internal/derive"
	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/infra/integration/leadapi"
	"github.com/luminacrm/lumina/internal/usecase"
)

// End-to-end smoke run against a local API: login, create a lead, walk
// it through the pipeline, print the dashboard numbers.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env not found, using system environment")
	}

	baseURL := os.Getenv("LUMINA_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := leadapi.NewClient(baseURL)
	result, err := client.Login(ctx, os.Getenv("LUMINA_EMAIL"), os.Getenv("LUMINA_PASSWORD"))
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("Logged in as %s\n", result.User.Email)

	store := cache.NewStore(client)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("initial load failed: %v", err)
	}
	fmt.Printf("Loaded %d leads\n", store.Len())

	pipeline := usecase.NewLeadPipeline(client, store, usecase.NopNotifier{}, result.User.Name)

	lead, err := pipeline.Create(ctx, usecase.CreateLeadInput{
		Name:    "Demo Lead",
		Email:   "demo@example.com",
		Company: "Example Inc",
		Source:  "Referral",
		Value:   12500,
	})
	if err != nil {
		log.Fatalf("create failed: %v", err)
	}
	fmt.Printf("Created lead %s\n", lead.ID)

	if err := pipeline.AddNote(ctx, lead.ID, "Initial discovery call scheduled"); err != nil {
		log.Fatalf("add note failed: %v", err)
	}

	if err := pipeline.UpdateStatus(ctx, lead.ID, entity.StatusContacted); err != nil {
		log.Fatalf("status update failed: %v", err)
	}
	fmt.Println("Lead moved to Contacted")

	stats := derive.LeadStats(store.Snapshot())
	fmt.Printf("Totals: %d leads, %.2f pipeline value, %.1f%% conversion\n",
		stats.Total, stats.Value, derive.ConversionRate(stats))
}
