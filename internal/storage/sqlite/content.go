package sqlite

import (
	"time"

	"github.com/arnavsh/promptgate/internal/storage/models"
)

// UpsertContent writes one content section for one language.
func (s *Storage) UpsertContent(section *models.ContentSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if section.Key == "" || section.Body == "" {
		return ErrInvalidInput
	}
	if section.Language == "" {
		section.Language = "en"
	}
	section.UpdatedAt = time.Now()

	_, err := s.db.Exec(`
		INSERT INTO site_content (key, language, body, position, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key, language) DO UPDATE SET
			body = excluded.body,
			position = excluded.position,
			updated_at = excluded.updated_at`,
		section.Key, section.Language, section.Body, section.Position, section.UpdatedAt,
	)
	return err
}

// ListContent returns all content sections for a language in display order.
// Sections missing in the requested language fall back to English.
func (s *Storage) ListContent(language string) ([]*models.ContentSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if language == "" {
		language = "en"
	}

	rows, err := s.db.Query(`
		SELECT key, language, body, position, updated_at
		FROM site_content c
		WHERE language = ?
		   OR (language = 'en' AND NOT EXISTS (
			SELECT 1 FROM site_content WHERE key = c.key AND language = ?))
		ORDER BY position ASC, key ASC`, language, language)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*models.ContentSection
	for rows.Next() {
		var sec models.ContentSection
		if err := rows.Scan(&sec.Key, &sec.Language, &sec.Body, &sec.Position, &sec.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, &sec)
	}
	return sections, rows.Err()
}
