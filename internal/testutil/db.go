// Package testutil wires throwaway databases for package tests.
package testutil

import (
	migration "MedFund-Backend/cmd/database/migrate"
	"MedFund-Backend/entities"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := migration.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role string) *entities.User {
	t.Helper()
	id := uuid.New()
	u := &entities.User{
		ID:    id,
		Name:  role + " " + id.String()[:8],
		Email: id.String()[:8] + "@medfund.test",
		Role:  role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateRequest(t *testing.T, db *gorm.DB, owner *entities.User, goal int64, status string) *entities.DonationRequest {
	t.Helper()
	r := &entities.DonationRequest{
		UserID:         owner.ID,
		PatientName:    "Asha",
		PatientAge:     34,
		PatientGender:  "female",
		PatientPhone:   "9800000000",
		MedicalProblem: "Kidney transplant",
		Overview:       "Needs a transplant within three months.",
		DonationAmount: decimal.NewFromInt(goal),
		Status:         status,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return r
}

func CreateDonation(t *testing.T, db *gorm.DB, request *entities.DonationRequest, donor *entities.User, amount int64, status string) *entities.Donation {
	t.Helper()
	d := &entities.Donation{
		RequestID:     request.ID,
		DonorID:       donor.ID,
		Amount:        decimal.NewFromInt(amount),
		Currency:      "USD",
		Status:        status,
		Provider:      "stripe",
		TransactionID: uuid.NewString(),
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return d
}
