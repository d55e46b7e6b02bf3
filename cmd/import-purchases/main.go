// Command import-purchases loads a CSV export of purchases into the purchase ledger,
// creating members by phone number as needed.
//
//	import-purchases purchases.csv
//
// IMPORT_DRY_RUN=true validates the file and reports counts without writing.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/config"
	"github.com/ArowuTest/giveaway-draw-backend/internal/logging"
	mongorepo "github.com/ArowuTest/giveaway-draw-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"github.com/ArowuTest/giveaway-draw-backend/pkg/mongodb"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}
	logging.Setup(config.GetEnv("LOGLEVEL", "info"))

	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	mongoURI := config.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := config.GetEnv("MONGODB_DATABASE", "giveaways")
	timeout := time.Duration(config.GetEnvAsInt("IMPORT_TIMEOUT_SECONDS", 300)) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongodb.NewClient(ctx, mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(dbName)

	file, err := os.Open(csvFilePath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	importer := utils.NewPurchaseImporter(mongorepo.NewUserRepository(db), mongorepo.NewPurchaseRepository(db))
	importer.DryRun = config.GetEnvAsBool("IMPORT_DRY_RUN", false)
	result, err := importer.ImportPurchases(ctx, file)
	if err != nil {
		log.Fatalf("Failed to import data: %v", err)
	}
	for _, rowErr := range result.Errors {
		slog.Warn("Skipped row", "error", rowErr)
	}
	slog.Info("Import completed",
		"dryRun", result.DryRun,
		"rows", result.TotalRows,
		"purchases", result.PurchasesCreated,
		"users", result.UsersCreated,
		"skipped", len(result.Errors))
}
