// Package infra wires the core's storage contracts to concrete engines.
package infra

import (
	"errors"

	infrarepo "github.com/bankbr/baas/infra/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens a postgres connection and migrates the schema.
func NewDBConnection(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&infrarepo.User{},
		&infrarepo.Account{},
		&infrarepo.Transaction{},
		&infrarepo.DepositCode{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
