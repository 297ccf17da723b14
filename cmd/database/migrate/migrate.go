package migration

import (
	"MedFund-Backend/entities"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// one call so gorm orders the tables by their foreign keys
	if err := db.AutoMigrate(
		&entities.User{},
		&entities.DonationRequest{},
		&entities.Donation{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.Info("Database migration complete")
	return nil
}
