package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openSQLite returns a GormStore over a fresh file database. It runs with the
// same TranslateError setting as the Postgres connection.
func openSQLite(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Admin{},
		&models.Identity{},
		&models.VerificationToken{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormStore(db)
}

func TestGormStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return openSQLite(t) })
}

func TestGormStoreWritesIdentityRow(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	d := newDriver("d@x.com", "+201000000002", "ABC-1")
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	var identity models.Identity
	if err := s.db.Where("email = ?", "d@x.com").First(&identity).Error; err != nil {
		t.Fatalf("identity row: %v", err)
	}
	if identity.Role != models.RoleDriver || identity.AccountID != d.ID || identity.Mobile != "+201000000002" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if err := s.Delete(ctx, models.RoleDriver, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var identities, vehicles int64
	s.db.Model(&models.Identity{}).Count(&identities)
	s.db.Model(&models.Vehicle{}).Count(&vehicles)
	if identities != 0 || vehicles != 0 {
		t.Fatalf("delete left %d identities and %d vehicles", identities, vehicles)
	}
}
