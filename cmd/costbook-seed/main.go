// costbook-seed fills a costs database with sample records spread
// across every month of a year, using the date-preserving insert so
// historical months actually get populated. Meant for local testing
// and report demos.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"costbook/internal/cli"
	"costbook/internal/core"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	var (
		dbPath        = flag.String("db", "./data/costbook.db", "path to the costs database")
		year          = flag.Int("year", time.Now().UTC().Year(), "year to seed")
		itemsPerMonth = flag.Int("items-per-month", 6, "records inserted per month")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	store := cli.OpenStore(logger, *dbPath)
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))
	currencies := core.Currencies()
	categories := core.Categories()

	ctx := context.Background()
	inserted := 0
	for month := 1; month <= 12; month++ {
		for i := 0; i < *itemsPerMonth; i++ {
			day := 1 + rng.Intn(28)
			rec := core.CostRecord{
				Sum:         float64(500+rng.Intn(29500)) / 100, // 5.00 .. 300.00
				Currency:    currencies[rng.Intn(len(currencies))],
				Category:    categories[rng.Intn(len(categories))],
				Description: "Seed item " + time.Month(month).String(),
				Date:        time.Date(*year, time.Month(month), day, 12, 0, 0, 0, time.UTC),
			}
			if _, err := store.AddCostWithDate(ctx, rec); err != nil {
				logger.Error("Seed insert failed", "error", err, "year", *year, "month", month)
				return
			}
			inserted++
		}
	}

	logger.Info("Seeding complete", "db", *dbPath, "year", *year, "inserted", inserted)
}
