package main

import (
	"database/sql"
	"log"
	"market-distance-service/internal/adapters/repositories"
	"market-distance-service/internal/config"
	"market-distance-service/internal/platform/db"
	"strings"
)

// dbtool initializes the schema and seeds entities, into Postgres when
// DATABASE_URL is set and SQLite (DB_PATH) otherwise.
func main() {
	cfg := config.Load()

	var (
		conn    *sql.DB
		err     error
		dialect = repositories.SQLite
	)
	if strings.TrimSpace(cfg.Storage.DatabaseURL) != "" {
		conn, err = db.Open(cfg.Storage.DatabaseURL)
		dialect = repositories.Postgres
	} else {
		conn, err = db.OpenSQLite(cfg.Storage.DBPath)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, cfg.Storage.SeedPath, dialect); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, seedPath string, dialect repositories.Dialect) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, seedPath, dialect); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
