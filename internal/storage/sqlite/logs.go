package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/arnavsh/promptgate/internal/storage/models"
)

// LogRequest records one routed request.
func (s *Storage) LogRequest(log *models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO request_logs (id, request_id, mode, provider, model, prompt_tokens,
			completion_chars, is_streaming, status_code, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.RequestID, log.Mode, log.Provider, log.Model, log.PromptTokens,
		log.CompletionChars, boolToInt(log.IsStreaming), log.StatusCode,
		log.ErrorMessage, log.DurationMs, log.CreatedAt,
	)
	return err
}

// RecentLogs returns the newest request logs, most recent first.
func (s *Storage) RecentLogs(limit int) ([]*models.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, request_id, mode, provider, model, prompt_tokens,
			completion_chars, is_streaming, status_code, error_message, duration_ms, created_at
		FROM request_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var log models.RequestLog
		var streaming int
		if err := rows.Scan(&log.ID, &log.RequestID, &log.Mode, &log.Provider, &log.Model,
			&log.PromptTokens, &log.CompletionChars, &streaming, &log.StatusCode,
			&log.ErrorMessage, &log.DurationMs, &log.CreatedAt); err != nil {
			return nil, err
		}
		log.IsStreaming = streaming != 0
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
