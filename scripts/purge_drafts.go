package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Removes draft requests that were abandoned more than 90 days ago,
// together with their event log entries. Run manually:
//
//	DATABASE_URL=postgres://... go run scripts/purge_drafts.go
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	result, err := db.Exec(`
		DELETE FROM domain_events
		WHERE request_id IN (
			SELECT id FROM requests
			WHERE status = 'DRAFT' AND updated_at < NOW() - INTERVAL '90 days'
		)`)
	if err != nil {
		log.Fatal("Failed to delete stale draft events:", err)
	}
	eventsDeleted, _ := result.RowsAffected()

	result, err = db.Exec(`
		DELETE FROM requests
		WHERE status = 'DRAFT' AND updated_at < NOW() - INTERVAL '90 days'`)
	if err != nil {
		log.Fatal("Failed to delete stale drafts:", err)
	}
	draftsDeleted, _ := result.RowsAffected()

	fmt.Printf("Deleted %d stale drafts and %d event log rows\n", draftsDeleted, eventsDeleted)
}
