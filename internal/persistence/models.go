package persistence

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ProfileRecord is a supply profile document stored for a household. The
// document is kept verbatim so it can be re-parsed with the current rules.
type ProfileRecord struct {
	ID        string
	HouseID   string
	Document  []byte
	Digest    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentDigest returns the hex encoded BLAKE2b-256 digest of a document.
func DocumentDigest(document []byte) string {
	sum := blake2b.Sum256(document)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the record.
func (r ProfileRecord) Clone() ProfileRecord {
	clone := r
	if r.Document != nil {
		clone.Document = append([]byte(nil), r.Document...)
	}
	return clone
}
