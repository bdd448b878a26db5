// Package storage provides the storage interface and implementations.
package storage

import (
	"github.com/arnavsh/promptgate/internal/storage/models"
	"github.com/arnavsh/promptgate/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	ProviderRecord = models.ProviderRecord
	ContentSection = models.ContentSection
	RequestLog     = models.RequestLog
)

// Re-export functions from models package
var MaskAPIKey = models.MaskAPIKey

// Re-export errors from sqlite package
var (
	ErrNotFound      = sqlite.ErrNotFound
	ErrDuplicateKey  = sqlite.ErrDuplicateKey
	ErrInvalidInput  = sqlite.ErrInvalidInput
	ErrStorageClosed = sqlite.ErrStorageClosed
	ErrEncryption    = sqlite.ErrEncryption
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// Provider config operations
	CreateProvider(rec *models.ProviderRecord) error
	GetProvider(id string) (*models.ProviderRecord, error)
	ListProviders() ([]*models.ProviderRecord, error)
	UpdateProvider(rec *models.ProviderRecord) error
	DeleteProvider(id string) error

	// Site content operations
	UpsertContent(section *models.ContentSection) error
	ListContent(language string) ([]*models.ContentSection, error)

	// Request logging operations
	LogRequest(log *models.RequestLog) error
	RecentLogs(limit int) ([]*models.RequestLog, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
