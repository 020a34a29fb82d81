package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func connReset() error {
	return &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("network failure is store unavailable", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(connReset())
		err := db.Ping(context.Background())
		require.Error(t, err)
		assert.Equal(t, shared.KindUnavailable, shared.KindOf(err))
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestRepository_StoreUnavailable(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total\), 0\) as total FROM "orders"`).
		WillReturnError(connReset())

	repo := NewGormOrderRepository(db.DB)
	_, err := repo.SumPaidRevenue(context.Background(), time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Equal(t, shared.KindUnavailable, shared.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind shared.ErrorKind
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, kind: shared.KindNotFound},
		{name: "duplicate key", err: gorm.ErrDuplicatedKey, kind: shared.KindConflict},
		{name: "bad connection", err: driver.ErrBadConn, kind: shared.KindUnavailable},
		{name: "connection done", err: sql.ErrConnDone, kind: shared.KindUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, kind: shared.KindUnavailable},
		{name: "network", err: connReset(), kind: shared.KindUnavailable},
		{name: "domain error passes through", err: shared.NewValidationError(shared.CodeValidation, "x"), kind: shared.KindValidation},
		{name: "unknown", err: errors.New("syntax error"), kind: shared.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "op")
			assert.Equal(t, tt.kind, shared.KindOf(got))
		})
	}

	assert.NoError(t, translateError(nil, "op"))
}
