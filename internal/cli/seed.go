package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/medeuamangeldi/quiz-maker-api/internal/app"
	"github.com/medeuamangeldi/quiz-maker-api/internal/config"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Tests []domain.Test `yaml:"tests"`
}

// NewSeedCmd loads test definitions from a YAML file into the catalog.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load tests from a YAML file into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/seed.yaml", "path to YAML test definitions")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.StorageDriver() == config.DriverMemory {
		log.Printf("storage driver is memory; seeded tests will not outlive this command")
	}

	seed, err := LoadSeedFile(file)
	if err != nil {
		return err
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	created, err := seedTests(ctx, svc.catalog, seed.Tests)
	log.Printf("seeded %d of %d tests", created, len(seed.Tests))
	return err
}

// LoadSeedFile parses a YAML seed file.
func LoadSeedFile(path string) (SeedFile, error) {
	var seed SeedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, err
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse %s: %w", path, err)
	}
	return seed, nil
}

// seedTests creates every test, continuing past failures and joining them.
func seedTests(ctx context.Context, catalog *app.CatalogService, tests []domain.Test) (int, error) {
	var (
		created int
		errs    []error
	)
	for _, test := range tests {
		stored, err := catalog.CreateTest(ctx, test)
		if err != nil {
			errs = append(errs, fmt.Errorf("test %q: %w", test.Title, err))
			continue
		}
		log.Printf("created test %s (%s)", stored.ID, stored.Title)
		created++
	}
	return created, errors.Join(errs...)
}
