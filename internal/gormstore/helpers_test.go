package gormstore

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roach88/uniqname/internal/config"
)

type project struct {
	ID             uint `gorm:"primaryKey"`
	Name           string
	OrganizationID *uint
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type tag struct {
	ID    uint `gorm:"primaryKey"`
	Label string
	Rank  int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&project{}, &tag{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func org(id uint) *uint { return &id }

func projectSettings() config.Settings {
	s := config.Default().For("projects")
	s.ConstraintFields = []string{"organization_id"}
	return s
}
