package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/dwiyanpr/product-catalog-api/config"
	"github.com/dwiyanpr/product-catalog-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password1"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	products := []struct {
		title string
		desc  string
		cost  float64
	}{
		{"Widget", "A plain demo widget", 9.99},
		{"Gadget", "A fancier demo gadget", 24.50},
	}
	for _, p := range products {
		if _, err := db.Exec(`
			INSERT INTO products (user_id, title, description, cost)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM products WHERE user_id = $1 AND title = $2
			)
		`, userID, p.title, p.desc, p.cost); err != nil {
			log.Fatalf("failed to seed product %q: %v", p.title, err)
		}
	}
	fmt.Println("seeded demo products")
}
