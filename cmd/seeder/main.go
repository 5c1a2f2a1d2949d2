package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/joho/godotenv"
	"github.com/mauv0809/whack-a-blob/internal/database"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

const (
	defaultPlayers     = 200
	recordsPerPlayer   = 3
	maxDeltaPerRecord  = 500
	referralEveryNth   = 5
	seededSeasonPrefix = "Seeded "
)

// Simplified config loading for the script
func loadConfig() (dbName, primaryURL, authToken string, players int) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok || dbName == "" {
		log.Fatalf("Error: Required environment variable DB_NAME is not set.")
	}
	players = defaultPlayers
	if raw := os.Getenv("SEED_PLAYERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid SEED_PLAYERS %q", raw)
		}
		players = n
	}
	return dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), players
}

func main() {
	log.Info("Starting database seeder...")
	dbName, primaryURL, authToken, numPlayers := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB(dbName, primaryURL, authToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	faker := gofakeit.New(0)
	users := user.NewWithNameSource(db, faker.FirstName)
	scores := ledger.New(db)

	s, err := season.New(db).CreateSeason(ctx, seededSeasonPrefix+faker.Color())
	if err != nil {
		log.Fatalf("Failed to create season: %s", err)
	}
	log.Info("Created season", "seasonID", s.ID, "name", s.Name)

	startTime := time.Now()
	var first *user.User
	for i := 0; i < numPlayers; i++ {
		key, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			log.Fatalf("Failed to generate wallet key: %s", err)
		}
		u, _, err := users.GetOrCreate(ctx, identity.PublicKeyAddress(key.PubKey()))
		if err != nil {
			log.Fatalf("Failed to create player: %s", err)
		}
		if first == nil {
			first = u
		} else if i%referralEveryNth == 0 {
			if err := users.LinkReferral(ctx, u.Address, first.ReferralUsername); err != nil {
				log.Warn("Failed to link seeded referral", "error", err, "address", u.Address)
			}
		}

		for r := 0; r < recordsPerPlayer; r++ {
			delta := int64(faker.IntRange(0, maxDeltaPerRecord))
			if _, err := scores.AppendScore(ctx, u.ID, s.ID, delta, ledger.SourceGame); err != nil {
				log.Fatalf("Failed to append score: %s", err)
			}
		}
		if (i+1)%50 == 0 {
			log.Info("Seeded players", "completed", i+1, "total", numPlayers)
		}
	}

	log.Info("Successfully seeded season.", "seasonID", s.ID, "players", numPlayers, "duration", time.Since(startTime))
}
