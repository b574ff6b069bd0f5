package jsonfile

import "github.com/bnema/session-guard/internal/domain"

// recordSchema keeps the field names of existing ban list files. SteamID may be
// null in files written by hand. Identity-only records are stored with the
// unknown sentinel as PlayerName, which is how the in-session host writes them.
type recordSchema struct {
	PlayerName string  `json:"PlayerName"`
	SteamID    *string `json:"SteamID"`
	BanDate    string  `json:"BanDate"`
	Reason     string  `json:"Reason"`
}

func toSchema(record domain.BanRecord) recordSchema {
	identity := record.PlatformIdentity
	if !domain.IsKnownIdentity(identity) {
		identity = domain.UnknownIdentity
	}
	name := record.PlayerName
	if record.IdentityOnly() {
		name = domain.UnknownIdentity
	}
	return recordSchema{
		PlayerName: name,
		SteamID:    &identity,
		BanDate:    record.BanDate,
		Reason:     record.Reason,
	}
}

func fromSchema(entry recordSchema) domain.BanRecord {
	identity := domain.UnknownIdentity
	if entry.SteamID != nil && domain.IsKnownIdentity(*entry.SteamID) {
		identity = *entry.SteamID
	}
	name := entry.PlayerName
	if name == domain.UnknownIdentity && domain.IsKnownIdentity(identity) {
		name = ""
	}
	return domain.BanRecord{
		PlayerName:       name,
		PlatformIdentity: identity,
		BanDate:          entry.BanDate,
		Reason:           entry.Reason,
	}
}
