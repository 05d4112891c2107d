package config

import (
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var (
	DB         *sql.DB
	initDBOnce sync.Once
)

// PostgresDSN builds the lib/pq connection URL. Credentials are escaped so
// passwords may contain URL metacharacters.
func PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(PostgresUser, PostgresPassword),
		Host:     PostgresHost + ":" + PostgresPort,
		Path:     PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// InitDB initializes the PostgreSQL connection as a singleton
func InitDB() error {
	var initError error
	initDBOnce.Do(func() {
		// Open a connection to PostgreSQL
		db, err := sql.Open("postgres", PostgresDSN())
		if err != nil {
			initError = fmt.Errorf("open postgres: %w", err)
			return
		}

		// Set connection pool limits
		db.SetMaxOpenConns(25)                  // Maximum number of open connections
		db.SetMaxIdleConns(25)                  // Maximum number of idle connections
		db.SetConnMaxLifetime(10 * time.Minute) // Recycle connections periodically

		// Ping the database to ensure the connection is successful
		if err := db.Ping(); err != nil {
			initError = fmt.Errorf("ping postgres: %w", err)
			return
		}

		DB = db
		Log.Info("connected to PostgreSQL")
	})

	return initError
}

// CloseDB closes the database connection gracefully
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
