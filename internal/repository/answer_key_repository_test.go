package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"exam-express/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var answerKeyColumns = []string{"ID", "VERSION", "KEY_JSON", "CREATED_AT"}

func TestAnswerKeyRepository_GetLatest(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAnswerKeyRepository(db)
	ctx := context.Background()

	t.Run("ReturnsHighestVersion", func(t *testing.T) {
		doc, err := json.Marshal(domain.DefaultAnswerKey())
		require.NoError(t, err)
		rows := sqlmock.NewRows(answerKeyColumns).AddRow("k2", 2, string(doc), time.Now())
		mock.ExpectQuery(`SELECT .* FROM answer_keys ORDER BY version DESC`).WillReturnRows(rows)

		key, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, key)
		assert.Equal(t, domain.DefaultAnswerKey(), *key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NothingStored", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM answer_keys`).WillReturnError(sql.ErrNoRows)

		key, err := repo.GetLatest(ctx)
		assert.NoError(t, err)
		assert.Nil(t, key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CorruptDocument", func(t *testing.T) {
		rows := sqlmock.NewRows(answerKeyColumns).AddRow("k3", 3, `{"reading":{}}`, time.Now())
		mock.ExpectQuery(`SELECT .* FROM answer_keys`).WillReturnRows(rows)

		_, err := repo.GetLatest(ctx)
		assert.ErrorIs(t, err, domain.ErrMalformedKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnswerKeyRepository_Save(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAnswerKeyRepository(db)
	ctx := context.Background()
	key := domain.DefaultAnswerKey()

	t.Run("InsertsNextVersion", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) FROM answer_keys`).
			WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(4))
		mock.ExpectExec(`INSERT INTO answer_keys \(id, version, key_json, created_at\)`).
			WithArgs(sqlmock.AnyArg(), 5, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		version, err := repo.Save(ctx, &key)
		require.NoError(t, err)
		assert.Equal(t, 5, version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConcurrentWriter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE`).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO answer_keys`).
			WillReturnError(errors.New("ORA-00001: unique constraint (EXAM.UQ_ANSWER_KEYS_VERSION) violated"))

		_, err := repo.Save(ctx, &key)
		assert.True(t, domain.IsErrorCode(err, domain.CodeConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
