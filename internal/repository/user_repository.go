package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"exam-express/internal/domain"
	"exam-express/internal/repository/models"
	"exam-express/internal/util"
)

const userColumns = `id AS ID, username AS USERNAME, password_hash AS PASSWORD_HASH,
	is_completed AS IS_COMPLETED, created_at AS CREATED_AT, updated_at AS UPDATED_AT`

type sqlxUserRepository struct {
	db DBTX
}

// NewUserRepository creates a domain.UserRepository backed by sqlx.
func NewUserRepository(db DBTX) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func (r *sqlxUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, password_hash, is_completed, created_at, updated_at)
	          VALUES (:ID, :USERNAME, :PASSWORD_HASH, :IS_COMPLETED, :CREATED_AT, :UPDATED_AT)`

	_, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, toUserModel(user))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError(fmt.Sprintf("username %q already exists", user.Username))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqlxUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *sqlxUserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	exec := GetExecutor(ctx, r.db)
	var m models.User
	if err := exec.GetContext(ctx, &m, exec.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserDomain(&m), nil
}

func (r *sqlxUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	exec := GetExecutor(ctx, r.db)
	var rows []models.User
	if err := exec.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, toUserDomain(&rows[i]))
	}
	return users, nil
}

func (r *sqlxUserRepository) SetCompleted(ctx context.Context, id string, completed bool) error {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx,
		exec.Rebind(`UPDATE users SET is_completed = ?, updated_at = ? WHERE id = ?`),
		boolToInt(completed), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, "user", id)
}

func (r *sqlxUserRepository) Delete(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, "user", id)
}

func requireAffected(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("%s %s not found", entity, id))
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toUserModel(u *domain.User) *models.User {
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: util.StringToNullString(u.PasswordHash),
		IsCompleted:  boolToInt(u.IsCompleted),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserDomain(m *models.User) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: util.NullStringToString(m.PasswordHash),
		IsCompleted:  m.IsCompleted != 0,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
