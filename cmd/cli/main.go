package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/api"
	"github.com/Maheesh09/studio-full-stack/internal/config"
	"github.com/Maheesh09/studio-full-stack/internal/export"
	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/Maheesh09/studio-full-stack/internal/store"
)

const usage = "expected 'migrate', 'export-contacts' or 'check-api' subcommand"

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	exportCmd := flag.NewFlagSet("export-contacts", flag.ExitOnError)
	format := exportCmd.String("format", "csv", "Export format: csv or xlsx")
	out := exportCmd.String("out", "", "Output file (defaults to a dated name in the current directory)")
	search := exportCmd.String("q", "", "Only export submissions matching this search")

	checkCmd := flag.NewFlagSet("check-api", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch os.Args[1] {
	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		runMigrate(cfg)
	case "export-contacts":
		exportCmd.Parse(os.Args[2:])
		if *format != "csv" && *format != "xlsx" {
			fmt.Println("format must be csv or xlsx")
			exportCmd.PrintDefaults()
			os.Exit(1)
		}
		exportContacts(cfg, *format, *out, *search)
	case "check-api":
		checkCmd.Parse(os.Args[2:])
		checkAPI(cfg)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) *store.Store {
	db, err := store.NewStore(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func runMigrate(cfg *config.Config) {
	db := openStore(cfg)
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Printf("Migrations applied (%s).\n", db.Dialect())
}

func exportContacts(cfg *config.Config, format, out, search string) {
	db := openStore(cfg)
	defer db.Close()

	// Ensure table exists if running cli before server
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	contacts, err := db.AllContacts(context.Background(), search)
	if err != nil {
		log.Fatalf("Failed to load contact submissions: %v", err)
	}

	if out == "" {
		out = export.Filename(format, time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", out, err)
	}

	write := export.ContactsCSV
	if format == "xlsx" {
		write = export.ContactsXLSX
	}
	if err := writeAndClose(f, contacts, write); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}

	fmt.Printf("Exported %d submissions to %s.\n", len(contacts), out)
}

func writeAndClose(f *os.File, contacts []models.ContactSubmission, write func(io.Writer, []models.ContactSubmission) error) error {
	if err := write(f, contacts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkAPI(cfg *config.Config) {
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	defer cancel()

	start := time.Now()
	page, err := client.PublicServices(ctx, 0, 1)
	if err != nil {
		fmt.Printf("Backend %s is not healthy: %v\n", client.BaseURL(), err)
		os.Exit(1)
	}
	fmt.Printf("Backend %s OK in %s (%d services).\n", client.BaseURL(), time.Since(start).Round(time.Millisecond), page.TotalElements)
}
