package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTest opens an isolated in-memory sqlite database for tests. The pool is
// pinned to one connection so every query sees the same in-memory database;
// code under test must therefore run queries inside a transaction on the
// transaction handle.
func NewTest() (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}
