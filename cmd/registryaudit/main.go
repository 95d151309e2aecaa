package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/suparena/tokenregistry"
	"github.com/suparena/tokenregistry/audit"
	"github.com/suparena/tokenregistry/datastore/ddb"
	"github.com/suparena/tokenregistry/eventlog"
	"github.com/suparena/tokenregistry/manifest"
	"github.com/suparena/tokenregistry/registry"
	"github.com/suparena/tokenregistry/storagemodels"
)

var (
	manifestPath = flag.String("manifest", "collection.yaml", "Path to the collection manifest")
	eventsPath   = flag.String("events", "events.db", "Path to the SQLite event log")
	snapshotFlag = flag.Bool("snapshot", false, "Upload extension snapshots to DynamoDB after a clean audit")
	mirrorFlag   = flag.Bool("mirror", false, "Mirror the event log to DynamoDB for history queries")
	tableFlag    = flag.String("table", "", "DynamoDB table name (defaults to $DDB_TABLE_NAME)")
	versionFlag  = flag.Bool("version", false, "Show version information")
	vFlag        = flag.Bool("v", false, "Show version information (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := tokenregistry.GetVersionInfo()
		fmt.Printf("tokenregistry registryaudit version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "registryaudit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; credentials may come from the environment.
	_ = godotenv.Load()

	ctx := context.Background()

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		return err
	}

	events, err := eventlog.NewSQLiteStore(*eventsPath)
	if err != nil {
		return err
	}
	defer events.Close()

	report, err := audit.Run(ctx, m, events)
	if err != nil {
		return err
	}

	printReport(report)
	if !report.OK() {
		return fmt.Errorf("audit found %d problem(s)", len(report.Problems))
	}

	if *snapshotFlag || *mirrorFlag {
		if err := uploadToDynamoDB(ctx, events, report); err != nil {
			return err
		}
	}
	return nil
}

func printReport(report *audit.Report) {
	fmt.Printf("Collection:       %s\n", report.Collection)
	fmt.Printf("Events replayed:  %d\n", report.EventsReplayed)
	fmt.Printf("Total supply:     %d\n", report.TotalSupply)
	fmt.Printf("Finalized supply: %d\n", report.FinalizedSupply)
	for _, ext := range report.Extensions {
		state := "open"
		if ext.Finalized {
			state = "finalized"
		}
		fmt.Printf("  extension %d %-20s target=%d realized=%d (%s)\n",
			ext.ExtensionID, ext.Name, ext.TargetSupply, ext.RealizedSupply, state)
	}
	for _, problem := range report.Problems {
		fmt.Printf("PROBLEM: %s\n", problem)
	}
}

func uploadToDynamoDB(ctx context.Context, events *eventlog.SQLiteStore, report *audit.Report) error {
	registry.RegisterDefaults()

	table := *tableFlag
	if table == "" {
		table = os.Getenv("DDB_TABLE_NAME")
	}
	if table == "" {
		return fmt.Errorf("no DynamoDB table: set -table or DDB_TABLE_NAME")
	}

	client, err := ddb.NewDynamoDBClient(
		os.Getenv("AWS_ACCESS_KEY_ID"),
		os.Getenv("AWS_SECRET_ACCESS_KEY"),
		os.Getenv("AWS_REGION"),
	)
	if err != nil {
		return fmt.Errorf("create DynamoDB client: %w", err)
	}

	if *snapshotFlag {
		store := ddb.NewDynamodbDataStoreWithClient[storagemodels.ExtensionSnapshot](client, table)
		for _, snap := range report.Extensions {
			if err := store.Put(ctx, snap); err != nil {
				return fmt.Errorf("upload snapshot for extension %d: %w", snap.ExtensionID, err)
			}
		}
		fmt.Printf("Uploaded %d extension snapshot(s) to %s\n", len(report.Extensions), table)
	}

	if *mirrorFlag {
		store := ddb.NewDynamodbDataStoreWithClient[storagemodels.TransferEvent](client, table)
		var mirrored uint64
		for {
			page, err := events.Read(ctx, mirrored, 512)
			if err != nil {
				return fmt.Errorf("read events after %d: %w", mirrored, err)
			}
			if len(page) == 0 {
				break
			}
			for _, ev := range page {
				if err := store.Put(ctx, *ev); err != nil {
					return fmt.Errorf("mirror event %s: %w", ev.ID, err)
				}
				mirrored++
			}
		}
		fmt.Printf("Mirrored %d event(s) to %s\n", mirrored, table)
	}
	return nil
}
