package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/water-supply/internal/persistence"
)

var _ persistence.ProfileRepository = (*Storage)(nil)

const profileColumns = "id, house_id, document, digest, created_at, updated_at"

// SaveProfile inserts a profile document or replaces the one stored for the
// same house.
func (s *Storage) SaveProfile(ctx context.Context, record persistence.ProfileRecord) (persistence.ProfileRecord, error) {
	record.HouseID = strings.TrimSpace(record.HouseID)
	if record.HouseID == "" || len(record.Document) == 0 {
		return persistence.ProfileRecord{}, persistence.ErrConstraintViolation
	}
	record = record.Clone()
	record.Digest = persistence.DocumentDigest(record.Document)
	now := s.now()
	record.UpdatedAt = now

	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := scanProfile(tx.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM supply_profiles WHERE house_id = ?", record.HouseID))
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			_, err = tx.ExecContext(ctx,
				"UPDATE supply_profiles SET document = ?, digest = ?, updated_at = ? WHERE id = ?",
				record.Document, record.Digest, formatTime(record.UpdatedAt), record.ID,
			)
			return s.mapper.MapError(err)
		case errors.Is(err, persistence.ErrNotFound):
			if record.ID == "" {
				record.ID = s.newID()
			}
			record.CreatedAt = now
			_, err = tx.ExecContext(ctx,
				"INSERT INTO supply_profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?)",
				record.ID, record.HouseID, record.Document, record.Digest, formatTime(record.CreatedAt), formatTime(record.UpdatedAt),
			)
			return s.mapper.MapError(err)
		default:
			return err
		}
	})
	if err != nil {
		return persistence.ProfileRecord{}, err
	}
	return record, nil
}

// GetProfile returns the document stored for houseID.
func (s *Storage) GetProfile(ctx context.Context, houseID string) (persistence.ProfileRecord, error) {
	row := s.pool.DB().QueryRowContext(ctx, "SELECT "+profileColumns+" FROM supply_profiles WHERE house_id = ?", strings.TrimSpace(houseID))
	return scanProfile(row)
}

// ListProfiles returns every stored profile ordered by house ID.
func (s *Storage) ListProfiles(ctx context.Context) ([]persistence.ProfileRecord, error) {
	rows, err := s.pool.DB().QueryContext(ctx, "SELECT "+profileColumns+" FROM supply_profiles ORDER BY house_id ASC")
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.ProfileRecord
	for rows.Next() {
		record, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return records, nil
}

// DeleteProfile removes the document stored for houseID.
func (s *Storage) DeleteProfile(ctx context.Context, houseID string) error {
	result, err := s.pool.DB().ExecContext(ctx, "DELETE FROM supply_profiles WHERE house_id = ?", strings.TrimSpace(houseID))
	if err != nil {
		return s.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (persistence.ProfileRecord, error) {
	var (
		record    persistence.ProfileRecord
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&record.ID, &record.HouseID, &record.Document, &record.Digest, &createdAt, &updatedAt); err != nil {
		return persistence.ProfileRecord{}, NewErrorMapper().MapError(err)
	}
	var err error
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ProfileRecord{}, fmt.Errorf("profile %s: %w", record.ID, err)
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.ProfileRecord{}, fmt.Errorf("profile %s: %w", record.ID, err)
	}
	return record, nil
}
