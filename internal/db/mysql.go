package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/fizl-health/fizl-backend/internal/config"
)

const pingAttempts = 5

// Connect opens the MySQL pool and waits for the server to accept
// connections. In container setups the database is often still starting
// when the API comes up, so the first pings are retried with a short
// backoff.
func Connect(cfg *config.Config) (*sql.DB, error) {
	pool, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pool.SetMaxOpenConns(20)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(3 * time.Minute)
	pool.SetConnMaxIdleTime(time.Minute)

	for attempt := 1; ; attempt++ {
		err = pool.Ping()
		if err == nil {
			break
		}
		if attempt == pingAttempts {
			return nil, fmt.Errorf("failed to ping database after %d attempts: %w", pingAttempts, err)
		}
		log.Printf("database not ready (attempt %d/%d): %v", attempt, pingAttempts, err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	log.Println("connected to mysql")
	return pool, nil
}
