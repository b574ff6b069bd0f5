package application

import (
	"math/rand/v2"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Admission is the room id handed to a lobby that asked to join.
type Admission struct {
	RoomID string
	// Decoy is set when RoomID is fake because a lobby member is banned.
	Decoy bool
	// BannedIdentity is the first banned member found.
	BannedIdentity string
}

// IdentityChecker is the part of the registry the admission gate needs.
type IdentityChecker interface {
	IsBannedByPlatformIdentity(identity string) bool
}

// AdmissionGate screens lobby members before the real room id is shared. When
// any member is banned the lobby receives a decoy id that looks real but never
// resolves to a room.
type AdmissionGate struct {
	session ports.Session
	bans    IdentityChecker
	logger  zerolog.Logger
}

func NewAdmissionGate(session ports.Session, bans IdentityChecker, logger zerolog.Logger) *AdmissionGate {
	return &AdmissionGate{session: session, bans: bans, logger: logger}
}

// Screen returns the id to send to a lobby with the given member identities.
// Only the authority screens; everyone else passes roomID through.
func (g *AdmissionGate) Screen(memberIdentities []string, roomID string) Admission {
	if local, ok := g.session.Local(); !ok || !local.IsAuthority {
		return Admission{RoomID: roomID}
	}

	for _, identity := range memberIdentities {
		if !domain.IsKnownIdentity(identity) || !g.bans.IsBannedByPlatformIdentity(identity) {
			continue
		}
		decoy := DecoyRoomID()
		g.logger.Warn().
			Str("identity", identity).
			Str("room", decoy).
			Msg("banned player tried to join, sending decoy room id")
		return Admission{RoomID: decoy, Decoy: true, BannedIdentity: identity}
	}

	return Admission{RoomID: roomID}
}

// DecoyRoomID returns a random id shaped like a UUID whose version and variant
// digits are never those of a random (v4) UUID, so it cannot collide with a
// real room id.
func DecoyRoomID() string {
	const (
		versionChars = "012356789abcdef"
		variantChars = "01234567cdef"
	)

	id := []byte(uuid.NewString())
	id[14] = versionChars[rand.IntN(len(versionChars))]
	id[19] = variantChars[rand.IntN(len(variantChars))]
	return string(id)
}
