package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-kasir/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedOperators(db)
	seedProducts(db)
	seedRules(db)

	log.Println("Seeding completed successfully!")
}

func seedOperators(db *sql.DB) {
	fmt.Println("Seeding Operators...")

	password := os.Getenv("SEED_OPERATOR_PASSWORD")
	if password == "" {
		password = "kasir-admin-123"
	}
	hash, err := app.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash operator password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO operators (username, password_hash, role)
		VALUES ('kasir-admin', $1, 'admin')
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, hash)
	if err != nil {
		log.Fatalf("Failed to seed operators: %v", err)
	}
}

func seedProducts(db *sql.DB) {
	fmt.Println("Seeding Products...")

	products := []struct {
		Barcode   string
		Name      string
		BasePrice int64
	}{
		{"4006381333931", "Stabilo Boss Original", 1850000},
		{"8992761111114", "Teh Botol Sosro 450ml", 550000},
		{"8998866200318", "Indomie Goreng", 350000},
		{"8992753103256", "Ultra Milk Full Cream 1L", 1950000},
		{"0799439112766", "Moleskine Classic Notebook", 24900000},
	}

	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (barcode, name, base_price)
			VALUES ($1, $2, $3)
			ON CONFLICT (barcode) DO UPDATE SET name = EXCLUDED.name, base_price = EXCLUDED.base_price
		`, p.Barcode, p.Name, p.BasePrice)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Barcode, err)
		}
	}
}

func seedRules(db *sql.DB) {
	fmt.Println("Seeding Pricing Rules...")

	rules := []struct {
		Barcode     string
		Category    string
		MinQuantity int
		Compute     string
		FixedPrice  sql.NullInt64
		PercentBps  sql.NullInt32
		Position    int
	}{
		{"8998866200318", "global", 0, "percentage", sql.NullInt64{}, sql.NullInt32{Int32: 500, Valid: true}, 0},
		{"8998866200318", "category", 10, "fixed_price", sql.NullInt64{Int64: 300000, Valid: true}, sql.NullInt32{}, 0},
		{"8992761111114", "product_template", 6, "fixed_price", sql.NullInt64{Int64: 500000, Valid: true}, sql.NullInt32{}, 0},
		{"8992761111114", "product_template", 24, "fixed_price", sql.NullInt64{Int64: 450000, Valid: true}, sql.NullInt32{}, 1},
		{"8992753103256", "product_variant", 2, "percentage", sql.NullInt64{}, sql.NullInt32{Int32: 1000, Valid: true}, 0},
	}

	for _, r := range rules {
		_, err := db.Exec(`
			INSERT INTO pricing_rules (product_id, category, min_quantity, compute, fixed_price, percent_bps, position)
			SELECT id, $2, $3, $4, $5, $6, $7 FROM products WHERE barcode = $1
			ON CONFLICT DO NOTHING
		`, r.Barcode, r.Category, r.MinQuantity, r.Compute, r.FixedPrice, r.PercentBps, r.Position)
		if err != nil {
			log.Fatalf("Failed to seed rule for %s: %v", r.Barcode, err)
		}
	}
}
