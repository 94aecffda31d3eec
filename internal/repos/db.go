package repos

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure an admin exists (idempotent; safe to run every start)
	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  asin TEXT NOT NULL UNIQUE,
  price NUMERIC NOT NULL DEFAULT 0,
  url TEXT NOT NULL,
  title TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  saving_percentage INTEGER NOT NULL DEFAULT 0,
  basis_price NUMERIC NOT NULL DEFAULT 0,
  customer_opinion TEXT NOT NULL DEFAULT '',
  ranking INTEGER NOT NULL DEFAULT 10000000,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_brand   ON products(brand);
CREATE INDEX IF NOT EXISTS idx_products_price   ON products(price);
CREATE INDEX IF NOT EXISTS idx_products_ranking ON products(ranking);

-- Product images (insertion order kept in position)
CREATE TABLE IF NOT EXISTS product_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_images_product ON product_images(product_id);

-- Variants (sibling_asin is a reference key, allowed to dangle)
CREATE TABLE IF NOT EXISTS product_variants(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  name TEXT NOT NULL,
  sibling_asin TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
`
	_, err := db.Exec(schema)
	return err
}

// seedAdmin ensures one ADMIN account exists so mutating endpoints are
// reachable on a fresh database.
func seedAdmin(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE role='ADMIN'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting default admin user")
	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), 12)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES(?,?,?,?,'ADMIN')
		ON CONFLICT(email) DO NOTHING
	`, uuid.NewString(), "admin@asinity.test", "Admin", string(h))
	return err
}
