package database

import (
	"log"

	"gorm.io/gorm"

	"pump-match/internal/profile"
)

// MigrateDatabase runs GORM migrations for the profile store models.
func MigrateDatabase(db *gorm.DB) error {
	log.Println("Running GORM migrations...")
	if err := db.AutoMigrate(&profile.MemberProfile{}, &profile.Endorsement{}); err != nil {
		log.Printf("ERROR: Failed to perform GORM migrations: %v", err)
		return err
	}
	log.Println("GORM migrations executed successfully.")
	return nil
}
