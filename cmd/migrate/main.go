package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP TABLE IF EXISTS poll_votes`,
		`DROP TABLE IF EXISTS poll_options`,
		`DROP TABLE IF EXISTS ranking_snapshots`,
		`DROP TABLE IF EXISTS engagement_counters`,
		`DROP TABLE IF EXISTS place_likes`,
		`DROP TABLE IF EXISTS place_visits`,
		`DROP TABLE IF EXISTS place_view_counters`,
		`DROP TABLE IF EXISTS places`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS places (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			area TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS place_view_counters (
			place_id BIGINT PRIMARY KEY,
			view_count BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
			last_viewed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS place_likes (
			place_id BIGINT NOT NULL,
			user_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (place_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS place_visits (
			place_id BIGINT NOT NULL,
			user_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (place_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS engagement_counters (
			place_id BIGINT PRIMARY KEY,
			anonymous_likes BIGINT NOT NULL DEFAULT 0 CHECK (anonymous_likes >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS ranking_snapshots (
			kind TEXT NOT NULL,
			size_bucket INT NOT NULL,
			entries JSONB NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (kind, size_bucket)
		)`,
		`CREATE TABLE IF NOT EXISTS poll_options (
			post_id BIGINT NOT NULL,
			option_id TEXT NOT NULL,
			text TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			PRIMARY KEY (post_id, option_id)
		)`,
		`CREATE TABLE IF NOT EXISTS poll_votes (
			post_id BIGINT NOT NULL,
			option_id TEXT NOT NULL,
			voter_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (post_id, option_id, voter_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_poll_votes_voter ON poll_votes (post_id, voter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_places_name ON places (name)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		INSERT INTO places (name, area, latitude, longitude) VALUES
			('Bagbazar Sarbojanin', 'Bagbazar', 22.6058, 88.3639),
			('College Square', 'College Street', 22.5726, 88.3639),
			('Mudiali Club', 'Mudiali', 22.5128, 88.3426),
			('Suruchi Sangha', 'New Alipore', 22.5090, 88.3300),
			('Ekdalia Evergreen', 'Gariahat', 22.5177, 88.3665)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed places: %w", err)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO poll_options (post_id, option_id, text, position) VALUES
			(1, 'opt-a', 'Day visit', 0),
			(1, 'opt-b', 'Night visit', 1),
			(1, 'opt-c', 'Skip this year', 2)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed poll options: %w", err)
	}

	return nil
}
