package migrate

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS region`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema(db, "region"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIndexes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_region_parent`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_region_rank_code`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_region_center`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, CreateIndexes(db, "region"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDropAndTruncate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DROP TABLE IF EXISTS region`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`TRUNCATE region`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, DropTable(db, "region"))
	require.NoError(t, TruncateTable(db, "region"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
