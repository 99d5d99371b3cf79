package entity

import (
	"encoding/json"
	"errors"

	"github.com/samber/lo"
)

// ErrMalformedBackupCodes is returned when the stored set cannot be decoded.
var ErrMalformedBackupCodes = errors.New("twofactor: malformed backup code data")

// BackupCodeEntry is the stored representation of one unconsumed backup
// code. The plaintext never appears here; only its salted digest does.
type BackupCodeEntry struct {
	// Salt is the per-entry random salt in its text encoding.
	Salt string `json:"salt"`
	// Hash is the KDF digest of (plaintext, salt) in its text encoding.
	Hash string `json:"hash"`
	// Version is the KDF version the digest was derived at. Zero means the
	// legacy scheme predating versioned entries.
	Version int `json:"v,omitempty"`
}

// KDFVersion returns the effective derivation version, mapping the legacy
// zero value to version 1.
func (e BackupCodeEntry) KDFVersion() int {
	if e.Version == 0 {
		return 1
	}
	return e.Version
}

// BackupCodeSet is the ordered collection of unconsumed entries, persisted
// as one JSON property on the user record.
type BackupCodeSet []BackupCodeEntry

// ParseBackupCodeSet decodes the persisted property value. An empty value
// is a valid empty set; anything undecodable is ErrMalformedBackupCodes.
func ParseBackupCodeSet(raw string) (BackupCodeSet, error) {
	if raw == "" {
		return BackupCodeSet{}, nil
	}

	var set BackupCodeSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, ErrMalformedBackupCodes
	}

	return set, nil
}

// Serialize encodes the set for persistence.
func (s BackupCodeSet) Serialize() (string, error) {
	if s == nil {
		s = BackupCodeSet{}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Remove returns the set without the given entry. Both salt and hash must
// match so accidental digest collisions never drop the wrong entry.
func (s BackupCodeSet) Remove(entry BackupCodeEntry) BackupCodeSet {
	return lo.Filter(s, func(e BackupCodeEntry, _ int) bool {
		return e.Salt != entry.Salt || e.Hash != entry.Hash
	})
}
