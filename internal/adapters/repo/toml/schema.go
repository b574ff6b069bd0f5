package toml

import (
	"fmt"

	"github.com/bnema/session-guard/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int         `toml:"version"`
	Bans    []banSchema `toml:"bans"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported ban list schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type banSchema struct {
	PlayerName string `toml:"player_name"`
	Identity   string `toml:"identity,omitempty"`
	BanDate    string `toml:"ban_date"`
	Reason     string `toml:"reason,omitempty"`
}

func toSchema(record domain.BanRecord) banSchema {
	entry := banSchema{
		PlayerName: record.PlayerName,
		BanDate:    record.BanDate,
		Reason:     record.Reason,
	}
	if domain.IsKnownIdentity(record.PlatformIdentity) {
		entry.Identity = record.PlatformIdentity
	}
	return entry
}

func fromSchema(entry banSchema) domain.BanRecord {
	identity := entry.Identity
	if !domain.IsKnownIdentity(identity) {
		identity = domain.UnknownIdentity
	}
	return domain.BanRecord{
		PlayerName:       entry.PlayerName,
		PlatformIdentity: identity,
		BanDate:          entry.BanDate,
		Reason:           entry.Reason,
	}
}
