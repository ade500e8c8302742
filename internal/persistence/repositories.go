package persistence

import "context"

// ProfileRepository stores supply profile documents keyed by house ID.
type ProfileRepository interface {
	// SaveProfile inserts the record or replaces the document stored for the
	// same house, keeping the original ID and CreatedAt.
	SaveProfile(ctx context.Context, record ProfileRecord) (ProfileRecord, error)
	GetProfile(ctx context.Context, houseID string) (ProfileRecord, error)
	ListProfiles(ctx context.Context) ([]ProfileRecord, error)
	DeleteProfile(ctx context.Context, houseID string) error
}
