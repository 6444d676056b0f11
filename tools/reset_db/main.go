// Command reset_db empties every application table while keeping the schema.
package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"connectsphere/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// tables child rows first
var tables = []string{
	"activity",
	"message",
	"channel_member",
	"speed_dial",
	"call_history",
	"calendar_event",
	"user_settings",
	"channel",
	"user",
}

func main() {
	cfg := config.LoadConfig().Database

	driver, dsn, err := dataSource(cfg)
	if err != nil {
		log.Fatalf("Unsupported database config: %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}
	fmt.Printf("Connected to %s (%s)\n", target(cfg), driver)

	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
	fmt.Print("Type 'YES' to confirm: ")
	confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(confirm) != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	failed := 0
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := db.Exec("DELETE FROM " + quote(driver, table)); err != nil {
			failed++
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}

	fmt.Println("\nResetting auto-increment IDs...")
	for _, table := range tables {
		if err := resetSequence(db, driver, table); err != nil {
			fmt.Printf("Resetting %s failed: %v\n", table, err)
		}
	}

	if failed > 0 {
		log.Fatalf("Database reset finished with %d failed tables", failed)
	}
	fmt.Println("\nDatabase reset completed, table structure preserved")
}

func dataSource(cfg config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Driver {
	case "", "sqlite":
		return "sqlite3", cfg.Path, nil
	case "mysql":
		return "mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Charset), nil
	case "postgres":
		return "pgx", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database), nil
	default:
		return "", "", fmt.Errorf("driver %q", cfg.Driver)
	}
}

func target(cfg config.DatabaseConfig) string {
	if cfg.Driver == "" || cfg.Driver == "sqlite" {
		return cfg.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)
}

// quote user is reserved in mysql and postgres
func quote(driver, table string) string {
	if driver == "mysql" {
		return "`" + table + "`"
	}
	return `"` + table + `"`
}

func resetSequence(db *sql.DB, driver, table string) error {
	var err error
	switch driver {
	case "mysql":
		_, err = db.Exec("ALTER TABLE " + quote(driver, table) + " AUTO_INCREMENT = 1")
	case "pgx":
		_, err = db.Exec(fmt.Sprintf(`ALTER SEQUENCE IF EXISTS "%s_id_seq" RESTART WITH 1`, table))
	case "sqlite3":
		// sqlite_sequence only exists once an AUTOINCREMENT table has been written
		_, err = db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		if err != nil && strings.Contains(err.Error(), "no such table") {
			err = nil
		}
	}
	return err
}
