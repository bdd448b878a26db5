package sqlite

import "errors"

// Storage errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStorageClosed = errors.New("storage is closed")
	ErrEncryption    = errors.New("encryption error")
)
