package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	pkgerrors "github.com/parking-finder/internal/pkg/errors"
)

const lotAGeoJSON = `{"type":"Point","coordinates":[-86.5295,39.1655]}`

var spotColumns = []string{"id", "tag", "geojson", "reserved", "reserved_by", "reserved_at", "created_at"}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDBForTest(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
}

func TestParkingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`FROM parking_spots WHERE id = \$1`).
			WithArgs(int64(0)).
			WillReturnRows(sqlmock.NewRows(spotColumns).
				AddRow(int64(0), "Lot-A", []byte(lotAGeoJSON), false, nil, nil, now))

		spot, err := repo.GetByID(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "Lot-A", spot.Tag)
		assert.Equal(t, domain.GeometryPoint, spot.Geometry.Type)
		assert.False(t, spot.Reserved)
		assert.Nil(t, spot.ReservedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`FROM parking_spots WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`FROM parking_spots WHERE id = \$1`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(ctx, 1)
		assert.ErrorIs(t, err, pkgerrors.ErrDatabaseError)
	})
}

func TestParkingRepository_FindWithinRadius(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParkingRepository(db)

	mock.ExpectQuery(`ST_DWithin`).
		WithArgs(-86.5295, 39.1655, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(0)).AddRow(int64(3)))

	ids, err := repo.FindWithinRadius(context.Background(), domain.Point{Lat: 39.1655, Lon: -86.5295}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParkingRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips query", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		spots, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, spots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hydrates rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)
		now := time.Now()

		mock.ExpectQuery(`WHERE id = ANY\(\$1\) ORDER BY id`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(spotColumns).
				AddRow(int64(0), "Lot-A", []byte(lotAGeoJSON), true, int64(7), now, now).
				AddRow(int64(1), "Lot-B", []byte(lotAGeoJSON), false, nil, nil, now))

		spots, err := repo.GetByIDs(ctx, []int64{0, 1})
		require.NoError(t, err)
		require.Len(t, spots, 2)
		assert.True(t, spots[0].IsReservedBy(7))
		assert.True(t, spots[0].Consistent())
		assert.False(t, spots[1].Reserved)
	})
}

func TestParkingRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParkingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM parking_spots`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(spotColumns).
			AddRow(int64(10), "Lot-K", []byte(lotAGeoJSON), false, nil, nil, time.Now()))

	spots, total, err := repo.List(context.Background(), domain.PaginationParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, spots, 1)
	assert.Equal(t, int64(10), spots[0].ID)
}

func TestParkingRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("free spot is reserved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`UPDATE parking_spots\s+SET reserved = TRUE, reserved_by = \$2, reserved_at = NOW\(\)\s+WHERE id = \$1 AND reserved = FALSE`).
			WithArgs(int64(0), int64(7)).
			WillReturnRows(sqlmock.NewRows(spotColumns).
				AddRow(int64(0), "Lot-A", []byte(lotAGeoJSON), true, int64(7), now, now))

		spot, err := repo.Reserve(ctx, 0, 7)
		require.NoError(t, err)
		assert.True(t, spot.IsReservedBy(7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already reserved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`UPDATE parking_spots`).
			WithArgs(int64(0), int64(8)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Reserve(ctx, 0, 8)
		assert.ErrorIs(t, err, domain.ErrAlreadyReserved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown spot", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`UPDATE parking_spots`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Reserve(ctx, 42, 8)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown user violates foreign key", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectQuery(`UPDATE parking_spots`).
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

		_, err := repo.Reserve(ctx, 0, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestParkingRepository_ListReservedBy(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParkingRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE reserved = TRUE AND reserved_by = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(spotColumns).
			AddRow(int64(0), "Lot-A", []byte(lotAGeoJSON), true, int64(7), now, now))

	spots, err := repo.ListReservedBy(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, "Lot-A", spots[0].Tag)
}

func TestParkingRepository_BulkInsert(t *testing.T) {
	ctx := context.Background()
	geom, err := domain.ParseGeometry([]byte(lotAGeoJSON))
	require.NoError(t, err)

	spots := []*domain.ParkingSpot{
		domain.NewParkingSpot(0, "Lot-A", geom),
		domain.NewParkingSpot(1, "Lot-B", geom),
	}

	t.Run("commits all rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO parking_spots`).
			WithArgs(int64(0), "Lot-A", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO parking_spots`).
			WithArgs(int64(1), "Lot-B", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.BulkInsert(ctx, spots))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParkingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO parking_spots`).
			WithArgs(int64(0), "Lot-A", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO parking_spots`).
			WithArgs(int64(1), "Lot-B", sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
		mock.ExpectRollback()

		err := repo.BulkInsert(ctx, spots)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert spot 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgErrorCode(t *testing.T) {
	assert.Equal(t, pgUniqueViolation, pgErrorCode(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.Equal(t, pgForeignKeyViolation, pgErrorCode(&pq.Error{Code: pgForeignKeyViolation}))
	assert.Equal(t, "", pgErrorCode(errors.New("plain")))
}

func TestParkingRepository_Health(t *testing.T) {
	ctx := context.Background()

	newPingDB := func(t *testing.T) (*DB, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewDBForTest(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
	}

	t.Run("postgis available", func(t *testing.T) {
		db, mock := newPingDB(t)
		mock.ExpectPing()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT postgis_lib_version()`)).
			WillReturnRows(sqlmock.NewRows([]string{"postgis_lib_version"}).AddRow("3.4.2"))

		assert.NoError(t, NewParkingRepository(db).Health(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgis missing", func(t *testing.T) {
		db, mock := newPingDB(t)
		mock.ExpectPing()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT postgis_lib_version()`)).
			WillReturnError(&pgconn.PgError{Code: "42883"})

		err := NewParkingRepository(db).Health(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgis unavailable")
	})

	t.Run("database down", func(t *testing.T) {
		db, mock := newPingDB(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := NewParkingRepository(db).Health(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping database")
	})
}
