package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/domain"
	"github.com/parking-finder/internal/domain/repository"
	pkgerrors "github.com/parking-finder/internal/pkg/errors"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// pgErrorCode возвращает SQLSTATE для ошибок pgx и lib/pq
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

const parkingColumns = `
	id,
	tag,
	ST_AsGeoJSON(geometry) AS geojson,
	reserved,
	reserved_by,
	reserved_at,
	created_at
`

type parkingRepository struct {
	db     *sqlx.DB
	pool   *DB
	logger *zap.Logger
}

type parkingRow struct {
	ID         int64         `db:"id"`
	Tag        string        `db:"tag"`
	GeoJSON    []byte        `db:"geojson"`
	Reserved   bool          `db:"reserved"`
	ReservedBy sql.NullInt64 `db:"reserved_by"`
	ReservedAt sql.NullTime  `db:"reserved_at"`
	CreatedAt  time.Time     `db:"created_at"`
}

func (r parkingRow) toDomain() (*domain.ParkingSpot, error) {
	var geom domain.Geometry
	if err := json.Unmarshal(r.GeoJSON, &geom); err != nil {
		return nil, fmt.Errorf("decode geometry of spot %d: %w", r.ID, err)
	}

	spot := &domain.ParkingSpot{
		ID:        r.ID,
		Tag:       r.Tag,
		Geometry:  geom,
		Reserved:  r.Reserved,
		CreatedAt: r.CreatedAt,
	}
	if r.ReservedBy.Valid {
		userID := r.ReservedBy.Int64
		spot.ReservedBy = &userID
	}
	if r.ReservedAt.Valid {
		at := r.ReservedAt.Time
		spot.ReservedAt = &at
	}
	return spot, nil
}

// NewParkingRepository создает PostGIS репозиторий парковочных мест
func NewParkingRepository(db *DB) repository.ParkingRepository {
	return &parkingRepository{
		db:     db.DB,
		pool:   db,
		logger: db.logger,
	}
}

func (r *parkingRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingSpot, error) {
	query := `SELECT ` + parkingColumns + ` FROM parking_spots WHERE id = $1`

	var row parkingRow
	err := r.db.QueryRowxContext(ctx, query, id).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get parking spot", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}

	return row.toDomain()
}

func (r *parkingRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSpot, error) {
	if len(ids) == 0 {
		return []*domain.ParkingSpot{}, nil
	}

	query := `SELECT ` + parkingColumns + ` FROM parking_spots WHERE id = ANY($1) ORDER BY id`

	return r.selectSpots(ctx, "get parking spots by ids", query, pq.Array(ids))
}

func (r *parkingRepository) List(ctx context.Context, page domain.PaginationParams) ([]*domain.ParkingSpot, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM parking_spots`); err != nil {
		r.logger.Error("Failed to count parking spots", zap.Error(err))
		return nil, 0, pkgerrors.ErrDatabaseError
	}

	query := `SELECT ` + parkingColumns + ` FROM parking_spots ORDER BY id LIMIT $1 OFFSET $2`

	spots, err := r.selectSpots(ctx, "list parking spots", query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return spots, total, nil
}

func (r *parkingRepository) FindWithinRadius(ctx context.Context, point domain.Point, radiusMeters int) ([]int64, error) {
	// ST_DWithin включает границу: distance <= radius
	query := `
		SELECT id
		FROM parking_spots
		WHERE ST_DWithin(
			geometry::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)
		ORDER BY id
	`

	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query, point.Lon, point.Lat, radiusMeters); err != nil {
		r.logger.Error("Failed to search parking spots by radius",
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Int("radius_m", radiusMeters),
			zap.Error(err),
		)
		return nil, pkgerrors.ErrDatabaseError
	}

	return ids, nil
}

func (r *parkingRepository) Reserve(ctx context.Context, spotID, userID int64) (*domain.ParkingSpot, error) {
	// compare-and-swap: строка обновляется только пока reserved = FALSE
	query := `
		UPDATE parking_spots
		SET reserved = TRUE, reserved_by = $2, reserved_at = NOW()
		WHERE id = $1 AND reserved = FALSE
		RETURNING ` + parkingColumns

	var row parkingRow
	err := r.db.QueryRowxContext(ctx, query, spotID, userID).StructScan(&row)
	if err == nil {
		return row.toDomain()
	}

	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, domain.ErrNotFound
	}

	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Failed to reserve parking spot",
			zap.Int64("spot_id", spotID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, pkgerrors.ErrDatabaseError
	}

	// ни одна строка не обновлена: места нет или оно уже занято
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM parking_spots WHERE id = $1)`, spotID); err != nil {
		r.logger.Error("Failed to check parking spot existence", zap.Int64("spot_id", spotID), zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrAlreadyReserved
}

func (r *parkingRepository) ListReservedBy(ctx context.Context, userID int64) ([]*domain.ParkingSpot, error) {
	query := `SELECT ` + parkingColumns + `
		FROM parking_spots
		WHERE reserved = TRUE AND reserved_by = $1
		ORDER BY id`

	return r.selectSpots(ctx, "list reserved parking spots", query, userID)
}

func (r *parkingRepository) BulkInsert(ctx context.Context, spots []*domain.ParkingSpot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO parking_spots (id, tag, geometry)
		VALUES ($1, $2, ST_SetSRID(ST_GeomFromGeoJSON($3), 4326))
	`

	for _, spot := range spots {
		geom, err := json.Marshal(spot.Geometry)
		if err != nil {
			return fmt.Errorf("encode geometry of spot %d: %w", spot.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, spot.ID, spot.Tag, string(geom)); err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return fmt.Errorf("insert spot %d: id already exists: %w", spot.ID, err)
			}
			return fmt.Errorf("insert spot %d: %w", spot.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}

	r.logger.Info("Parking spots imported", zap.Int("count", len(spots)))
	return nil
}

func (r *parkingRepository) Health(ctx context.Context) error {
	return r.pool.Health(ctx)
}

func (r *parkingRepository) selectSpots(ctx context.Context, op, query string, args ...interface{}) ([]*domain.ParkingSpot, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}
	defer rows.Close()

	spots := make([]*domain.ParkingSpot, 0)
	for rows.Next() {
		var row parkingRow
		if err := rows.StructScan(&row); err != nil {
			r.logger.Error("Failed to scan parking spot", zap.String("op", op), zap.Error(err))
			return nil, pkgerrors.ErrDatabaseError
		}
		spot, err := row.toDomain()
		if err != nil {
			r.logger.Error("Failed to decode parking spot", zap.String("op", op), zap.Error(err))
			return nil, pkgerrors.ErrDatabaseError
		}
		spots = append(spots, spot)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate parking spots", zap.String("op", op), zap.Error(err))
		return nil, pkgerrors.ErrDatabaseError
	}

	return spots, nil
}
