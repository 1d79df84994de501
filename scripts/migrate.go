package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Constraints gorm's AutoMigrate cannot express reliably across versions.
// The partial unique index is what serializes concurrent week creation,
// so it must exist before the server takes traffic.
const constraintSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS ux_weeks_one_active
	ON weeks (group_id) WHERE status <> 'RESOLVED';
CREATE UNIQUE INDEX IF NOT EXISTS ux_votes_week_user
	ON votes (week_id, user_id);
CREATE UNIQUE INDEX IF NOT EXISTS ux_group_members_group_user
	ON group_members (group_id, user_id);
CREATE UNIQUE INDEX IF NOT EXISTS ux_read_marks_user_item
	ON read_marks (user_id, reading_item_id);
CREATE UNIQUE INDEX IF NOT EXISTS ux_proposal_comment_reads
	ON proposal_comment_reads (user_id, proposal_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_items_week_id
	ON reading_items (week_id);
`

const demoSQL = `
INSERT INTO users (id, name, email, default_language, avatar_preset, created_at)
VALUES
	('11111111-1111-1111-1111-111111111111', 'Grace', 'grace@example.com', 'en', 'dove', NOW()),
	('22222222-2222-2222-2222-222222222222', 'Thomas', 'thomas@example.com', 'en', 'fish', NOW()),
	('33333333-3333-3333-3333-333333333333', 'Lydia', 'lydia@example.com', 'en', 'lamp', NOW())
ON CONFLICT (email) DO NOTHING;

INSERT INTO groups (id, name, timezone, owner_id, tie_policy, live_tally, voting_duration_hours, created_at)
VALUES
	('aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa', 'Morning Light', 'America/New_York',
	 '11111111-1111-1111-1111-111111111111', 'ADMIN_PICK', TRUE, 68, NOW())
ON CONFLICT (id) DO NOTHING;

INSERT INTO group_members (id, group_id, user_id, role, joined_at)
VALUES
	('bbbbbbbb-0000-0000-0000-000000000001', 'aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa',
	 '11111111-1111-1111-1111-111111111111', 'OWNER', NOW()),
	('bbbbbbbb-0000-0000-0000-000000000002', 'aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa',
	 '22222222-2222-2222-2222-222222222222', 'MEMBER', NOW()),
	('bbbbbbbb-0000-0000-0000-000000000003', 'aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa',
	 '33333333-3333-3333-3333-333333333333', 'MEMBER', NOW())
ON CONFLICT (group_id, user_id) DO NOTHING;
`

func main() {
	demo := flag.Bool("demo", false, "also insert demo users and a demo group")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	log.Println("Applying constraints...")
	if _, err := db.Exec(constraintSQL); err != nil {
		log.Fatalf("Failed to apply constraints: %v", err)
	}
	log.Println("Constraints applied successfully")

	if *demo {
		log.Println("Inserting demo data...")
		if _, err := db.Exec(demoSQL); err != nil {
			log.Fatalf("Failed to insert demo data: %v", err)
		}
		log.Println("Demo data inserted successfully")
	}
}
