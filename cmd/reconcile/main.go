// Command reconcile recomputes denormalized counters from their underlying
// relationship rows and repairs any drift. Intended for cron or manual runs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"gitforum/internal/config"
	"gitforum/internal/counters"
	"gitforum/internal/database"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Maximum time for the reconciliation run")
	asJSON := flag.Bool("json", false, "Print the full report as JSON")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	engine := counters.NewEngine(db)
	report, err := engine.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		return
	}

	log.Printf("Checked %d counter fields, repaired %d drifted values in %s",
		report.Checked, len(report.Corrections), report.FinishedAt.Sub(report.StartedAt))
	for _, c := range report.Corrections {
		log.Printf("  %s[%d].%s: stored=%d actual=%d", c.Entity, c.ID, c.Field, c.Stored, c.Actual)
	}
}
