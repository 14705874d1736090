// Command shopguard-migrate applies the users schema with goose.
//
//	SHOPGUARD_DATABASE_URL=postgres://... shopguard-migrate -dir migrations
package main

import (
	"flag"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	dir := flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	dbURL := os.Getenv("SHOPGUARD_DATABASE_URL")
	if dbURL == "" {
		log.Fatal("SHOPGUARD_DATABASE_URL is empty")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}
	db, err := goose.OpenDBWithDriver("pgx", dbURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := goose.Up(db, *dir); err != nil {
		log.Fatalf("migrate up: %v", err)
	}
	log.Println("migrations: up OK")
}
