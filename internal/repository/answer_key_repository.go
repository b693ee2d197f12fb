package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/repository/models"
	"exam-express/internal/util"
)

type sqlxAnswerKeyRepository struct {
	db DBTX
}

// NewAnswerKeyRepository creates a domain.AnswerKeyRepository that keeps every saved version.
func NewAnswerKeyRepository(db DBTX) domain.AnswerKeyRepository {
	return &sqlxAnswerKeyRepository{db: db}
}

func (r *sqlxAnswerKeyRepository) GetLatest(ctx context.Context) (*domain.AnswerKey, error) {
	exec := GetExecutor(ctx, r.db)
	var m models.AnswerKey
	query := `SELECT id AS ID, version AS VERSION, key_json AS KEY_JSON, created_at AS CREATED_AT
	          FROM answer_keys ORDER BY version DESC`
	if err := exec.GetContext(ctx, &m, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest answer key: %w", err)
	}

	key, err := domain.ParseAnswerKey([]byte(m.KeyJSON))
	if err != nil {
		return nil, fmt.Errorf("stored answer key version %d is invalid: %w", m.Version, err)
	}
	return key, nil
}

func (r *sqlxAnswerKeyRepository) Save(ctx context.Context, key *domain.AnswerKey) (int, error) {
	payload, err := json.Marshal(key)
	if err != nil {
		return 0, fmt.Errorf("failed to encode answer key: %w", err)
	}

	exec := GetExecutor(ctx, r.db)
	var current int
	if err := exec.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM answer_keys`); err != nil {
		return 0, fmt.Errorf("failed to read answer key version: %w", err)
	}

	m := models.AnswerKey{
		ID:        util.NewULID(),
		Version:   current + 1,
		KeyJSON:   string(payload),
		CreatedAt: time.Now(),
	}
	query := `INSERT INTO answer_keys (id, version, key_json, created_at)
	          VALUES (:ID, :VERSION, :KEY_JSON, :CREATED_AT)`
	if _, err := exec.NamedExecContext(ctx, query, m); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.NewConflictError("answer key was modified concurrently, retry the update")
		}
		return 0, fmt.Errorf("failed to save answer key: %w", err)
	}
	return m.Version, nil
}
