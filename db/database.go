package db

import (
	"log"
	"os"
	"path/filepath"

	"trendmart/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database at the given path and migrates the schema.
// Tests use it directly with ":memory:".
func Connect(dbPath string) error {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := database.AutoMigrate(
		&models.Product{}, &models.ProductVariation{},
	); err != nil {
		return err
	}

	DB = database
	return nil
}

func InitDatabase() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "catalog.db"
	}

	// Ensure the directory exists (create if it doesn't)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal("Failed to create database directory:", err)
		}
	}

	if err := Connect(dbPath); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Database connected successfully at", dbPath)
}

// Close releases the underlying connection on shutdown.
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Println("Failed to get database handle:", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("Failed to close database:", err)
	}
}
