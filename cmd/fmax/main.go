// Command fmax runs one Fmax permutation test as a batch job: it loads a
// measurement workbook, executes the test with the configured permutation
// count and seed, and prints the result as JSON. All configuration comes from
// the environment (see internal/config); there is no interactive surface.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/HuseyinOrkun/FMUT/app"
	"github.com/HuseyinOrkun/FMUT/internal/config"
	"github.com/HuseyinOrkun/FMUT/internal/container"
	"github.com/HuseyinOrkun/FMUT/internal/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Data.ExcelFile == "" {
		log.Fatalf("%v", errors.ConfigInvalid("FMAX_EXCEL_FILE is required"))
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer c.Shutdown()

	ctx := context.Background()
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			log.Fatalf("Failed to initialize result store: %v", err)
		}
	}

	data, err := c.Reader.ReadMeasurements(ctx, cfg.Data.ExcelFile)
	if err != nil {
		log.Fatalf("Failed to load measurements: %v", err)
	}

	res, err := c.PermTest.RunTest(ctx, app.TestRequest{
		Data:            data,
		NumPermutations: cfg.Engine.NumPermutations,
		Seed:            cfg.Engine.Seed,
		Workers:         cfg.Engine.Workers,
		Alpha:           cfg.Engine.Alpha,
		ProgressEvery:   cfg.Engine.ProgressEvery,
		Progress: func(completed, total int) {
			log.Printf("[fmax] %d/%d permutations", completed, total)
		},
	})
	if err != nil {
		log.Fatalf("Permutation test failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
