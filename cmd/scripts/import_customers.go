package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kolekthq/kolekt-backend/internal/config"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Imports customers from a CSV export into a tenant's loyalty program.
// Expected columns: phone, firstName, lastName, optedIn (true/false).
//
// Usage: import_customers <tenant-id-hex> <csv-file>
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is required")
	}
	dbName := config.GetEnv("MONGODB_DATABASE", "kolekt")

	if len(os.Args) < 3 {
		log.Fatal("Usage: import_customers <tenant-id> <csv-file>")
	}
	tenantID, err := primitive.ObjectIDFromHex(os.Args[1])
	if err != nil {
		log.Fatalf("Invalid tenant id: %v", err)
	}
	csvFilePath := os.Args[2]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)
	imported, skipped, err := importCustomers(db, tenantID, csvFilePath)
	if err != nil {
		log.Fatalf("Failed to import customers: %v", err)
	}
	log.Printf("Imported %d customers (%d skipped)", imported, skipped)
}

func importCustomers(db *mongo.Database, tenantID primitive.ObjectID, csvFilePath string) (int, int, error) {
	file, err := os.Open(csvFilePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	if len(records) < 2 {
		return 0, 0, fmt.Errorf("CSV file is empty or has only a header")
	}

	customers := db.Collection("customers")
	balances := db.Collection("balances")

	imported, skipped := 0, 0
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < 1 || record[0] == "" {
			log.Printf("Warning: record %d has no phone number, skipping", i)
			skipped++
			continue
		}

		now := time.Now()
		customer := models.Customer{
			ID:       primitive.NewObjectID(),
			TenantID: tenantID,
			Phone:    record[0],
			Status:   models.LoyaltyStatusActive,
		}
		if len(record) > 1 {
			customer.FirstName = record[1]
		}
		if len(record) > 2 {
			customer.LastName = record[2]
		}
		if len(record) > 3 && record[3] == "true" {
			customer.OptedIn = true
			customer.OptInDate = now
		}
		customer.CreatedAt = now
		customer.UpdatedAt = now

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := customers.InsertOne(ctx, customer)
		if err != nil {
			cancel()
			if mongo.IsDuplicateKeyError(err) {
				log.Printf("Warning: record %d (%s) already enrolled, skipping", i, record[0])
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("failed to insert record %d: %w", i, err)
		}

		_, err = balances.InsertOne(ctx, models.PointsBalance{
			ID:         primitive.NewObjectID(),
			TenantID:   tenantID,
			CustomerID: customer.ID,
			UpdatedAt:  now,
		})
		cancel()
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to open balance for record %d: %w", i, err)
		}
		imported++
	}
	return imported, skipped, nil
}
