// cmd/tools/registry-updater/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/database"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/repository/programs"
	"eligibility-workers/pkg/registry"

	"github.com/shopspring/decimal"
)

var catalogPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	addRuleCmd := flag.NewFlagSet("add-rule", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	invalidateCmd := flag.NewFlagSet("invalidate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{validateCmd, addRuleCmd, importCmd} {
		fs.StringVar(&catalogPath, "path", "configs/programs.json", "Path to program catalog")
	}

	// add-rule flags
	jurisdiction := addRuleCmd.String("jurisdiction", "", "Two-letter jurisdiction code (e.g., IL)")
	programID := addRuleCmd.String("program", "", "Program ID (e.g., aabd-medical-aged)")
	version := addRuleCmd.String("version", "", "Rule version, higher than the current one (e.g., 3 or 2.1)")
	effective := addRuleCmd.String("effective", "", "Effective date, RFC3339 or YYYY-MM-DD")
	expression := addRuleCmd.String("expression", "", "Rule expression as JSON")
	description := addRuleCmd.String("description", "", "Description")

	// import flags
	createTables := importCmd.Bool("create-tables", false, "Create the programs tables if missing")

	// invalidate flags
	invalidateJurisdiction := invalidateCmd.String("jurisdiction", "", "Jurisdiction to drop; empty drops all")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}

	case "add-rule":
		addRuleCmd.Parse(os.Args[2:])
		if *jurisdiction == "" || *programID == "" || *version == "" || *effective == "" || *expression == "" {
			fmt.Println("Error: jurisdiction, program, version, effective, and expression are required for add-rule.")
			addRuleCmd.Usage()
			os.Exit(1)
		}
		rule, err := buildRule(*version, *effective, *expression, *description)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := addRule(*jurisdiction, *programID, rule); err != nil {
			fmt.Printf("Error adding rule: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added %s/%s v%s effective %s\n", *jurisdiction, *programID, rule.Version, rule.EffectiveDate.Format(time.RFC3339))

	case "import":
		importCmd.Parse(os.Args[2:])
		if err := importCatalog(*createTables); err != nil {
			fmt.Printf("Import failed: %v\n", err)
			os.Exit(1)
		}

	case "invalidate":
		invalidateCmd.Parse(os.Args[2:])
		if err := invalidate(*invalidateJurisdiction); err != nil {
			fmt.Printf("Invalidate failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func validateCatalog() error {
	cat, err := registry.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	rules := 0
	for _, p := range cat.Programs {
		rules += len(p.Rules)
	}
	fmt.Printf("Catalog %s validation passed. Found %d programs with %d rule versions in %v.\n",
		cat.Version, len(cat.Programs), rules, cat.Jurisdictions())
	return nil
}

func buildRule(version, effective, expression, description string) (registry.RuleEntry, error) {
	v, err := decimal.NewFromString(version)
	if err != nil {
		return registry.RuleEntry{}, fmt.Errorf("invalid version %q: %w", version, err)
	}

	at, err := time.Parse(time.RFC3339, effective)
	if err != nil {
		if at, err = time.Parse("2006-01-02", effective); err != nil {
			return registry.RuleEntry{}, fmt.Errorf("invalid effective date %q", effective)
		}
	}

	if !json.Valid([]byte(expression)) {
		return registry.RuleEntry{}, fmt.Errorf("expression is not valid JSON")
	}

	return registry.RuleEntry{
		Version:       v,
		EffectiveDate: at.UTC(),
		Description:   description,
		Expression:    json.RawMessage(expression),
	}, nil
}

func addRule(jurisdiction, programID string, rule registry.RuleEntry) error {
	cat, err := registry.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := cat.AddRule(jurisdiction, programID, rule); err != nil {
		return err
	}
	return registry.SaveCatalog(catalogPath, cat)
}

// importCatalog upserts every program and its rule history into Postgres.
func importCatalog(createTables bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	cat, err := registry.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := programs.NewPostgresStore(pg)
	if createTables {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	for _, p := range cat.Programs {
		if err := store.UpsertProgram(ctx, p.Program(), p.ProgramRules()); err != nil {
			return fmt.Errorf("program %s/%s: %w", p.Jurisdiction, p.ProgramID, err)
		}
		log.Info("program imported", map[string]interface{}{
			"jurisdiction": p.Jurisdiction,
			"programId":    p.ProgramID,
			"rules":        len(p.Rules),
		})
	}

	fmt.Printf("Imported %d programs from catalog %s.\n", len(cat.Programs), cat.Version)
	return nil
}

func invalidate(jurisdiction string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer redis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := programs.NewCache(redis, cfg.Eligibility.CacheDuration()).Invalidate(ctx, jurisdiction)
	if err != nil {
		return err
	}

	scope := jurisdiction
	if scope == "" {
		scope = "all jurisdictions"
	}
	fmt.Printf("Dropped %d cached snapshots for %s.\n", removed, scope)
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  validate    Validate the program catalog
  add-rule    Add a rule version to a program, closing the current one
  import      Upsert the catalog into PostgreSQL
  invalidate  Drop cached candidate snapshots from Redis
  help        Show this help message

Examples:
  registry-updater validate -path configs/programs.json
  registry-updater add-rule -jurisdiction IL -program all-kids -version 3 -effective 2027-01-01 -expression '{"<=":[{"var":"income_fpl_percent"},318]}'
  registry-updater import -path configs/programs.json -create-tables
  registry-updater invalidate -jurisdiction IL

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
