package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arnavsh/promptgate/internal/storage/models"
	"github.com/arnavsh/promptgate/internal/types"
)

// CreateProvider stores a provider config with the API key encrypted.
// A missing ID is generated; a missing position appends to the chain.
func (s *Storage) CreateProvider(rec *models.ProviderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if rec.Label == "" || !rec.Kind.Valid() {
		return ErrInvalidInput
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Position == 0 {
		var maxPos sql.NullInt64
		if err := s.db.QueryRow(`SELECT MAX(position) FROM providers`).Scan(&maxPos); err == nil && maxPos.Valid {
			rec.Position = int(maxPos.Int64) + 1
		}
	}

	encrypted, err := s.encryptor.Encrypt(rec.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO providers (id, label, kind, base_url, model, api_key, enabled, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Label, string(rec.Kind), rec.BaseURL, rec.Model, encrypted,
		boolToInt(rec.Enabled), rec.Position, now, now,
	)
	return err
}

// GetProvider fetches one provider config by id, decrypting the API key.
func (s *Storage) GetProvider(id string) (*models.ProviderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		SELECT id, label, kind, base_url, model, api_key, enabled, position, created_at, updated_at
		FROM providers WHERE id = ?`, id)

	rec, err := s.scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListProviders returns all provider configs in priority order.
func (s *Storage) ListProviders() ([]*models.ProviderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, label, kind, base_url, model, api_key, enabled, position, created_at, updated_at
		FROM providers ORDER BY position ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ProviderRecord
	for rows.Next() {
		rec, err := s.scanProvider(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateProvider rewrites a stored config; the key is re-encrypted.
func (s *Storage) UpdateProvider(rec *models.ProviderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	encrypted, err := s.encryptor.Encrypt(rec.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	rec.UpdatedAt = time.Now()
	result, err := s.db.Exec(`
		UPDATE providers
		SET label = ?, kind = ?, base_url = ?, model = ?, api_key = ?, enabled = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		rec.Label, string(rec.Kind), rec.BaseURL, rec.Model, encrypted,
		boolToInt(rec.Enabled), rec.Position, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProvider removes a stored config.
func (s *Storage) DeleteProvider(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	result, err := s.db.Exec(`DELETE FROM providers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanProvider(row scanner) (*models.ProviderRecord, error) {
	var rec models.ProviderRecord
	var kind, encrypted string
	var enabled int

	err := row.Scan(&rec.ID, &rec.Label, &kind, &rec.BaseURL, &rec.Model,
		&encrypted, &enabled, &rec.Position, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.encryptor.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	rec.Kind = types.Kind(kind)
	rec.APIKey = apiKey
	rec.Enabled = enabled != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
