package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// BanDateLayout is the timestamp layout stored in BanRecord.BanDate.
	BanDateLayout = "2006-01-02 15:04:05"

	MaxNameLength     = 100
	MaxIdentityLength = 20
)

type BanRecord struct {
	PlayerName       string
	PlatformIdentity string
	BanDate          string
	Reason           string
}

func NewBanRecord(name, identity, reason string, at time.Time) BanRecord {
	if !IsKnownIdentity(identity) {
		identity = UnknownIdentity
	}

	return BanRecord{
		PlayerName:       strings.TrimSpace(name),
		PlatformIdentity: strings.TrimSpace(identity),
		BanDate:          at.Format(BanDateLayout),
		Reason:           reason,
	}
}

// Matches reports whether the record covers name or identity. The identity only
// counts when neither side is the unknown sentinel.
func (r BanRecord) Matches(name, identity string) bool {
	if n := NormalizeName(name); n != "" && n == NormalizeName(r.PlayerName) {
		return true
	}
	if id := NormalizeIdentity(identity); id != "" && id == NormalizeIdentity(r.PlatformIdentity) {
		return true
	}
	return false
}

// IdentityOnly reports whether the record was created from a platform identity
// alone and carries no player name.
func (r BanRecord) IdentityOnly() bool {
	return strings.TrimSpace(r.PlayerName) == ""
}

// Label is the player name, or the identity for identity-only records.
func (r BanRecord) Label() string {
	if r.IdentityOnly() {
		return r.PlatformIdentity
	}
	return r.PlayerName
}

// BannedAt parses BanDate. Records written by older tools may carry other layouts,
// in which case the zero time is returned.
func (r BanRecord) BannedAt() time.Time {
	parsed, err := time.ParseInLocation(BanDateLayout, r.BanDate, time.Local)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeIdentity lowercases identity and maps the unknown sentinel to "".
func NormalizeIdentity(identity string) string {
	if !IsKnownIdentity(identity) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(identity))
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w (max %d characters)", ErrNameTooLong, MaxNameLength)
	}
	return nil
}

func ValidatePlatformIdentity(identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return fmt.Errorf("%w: identity is required", ErrInvalidIdentity)
	}
	if len(identity) > MaxIdentityLength {
		return fmt.Errorf("%w: too long (max %d characters)", ErrInvalidIdentity, MaxIdentityLength)
	}
	for _, r := range identity {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: must contain only digits", ErrInvalidIdentity)
		}
	}
	return nil
}
