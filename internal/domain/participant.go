package domain

import "strings"

// UnknownIdentity marks a participant whose platform identity could not be resolved.
const UnknownIdentity = "Unknown"

// ActorID is the session-scoped actor number assigned by the transport layer.
type ActorID int

// NoActor is the zero ActorID; transports never hand it to a real participant.
const NoActor ActorID = 0

type Participant struct {
	ActorID          ActorID
	DisplayName      string
	PlatformIdentity string
	IsLocal          bool
	IsAuthority      bool
}

func (p Participant) HasIdentity() bool {
	return IsKnownIdentity(p.PlatformIdentity)
}

// Identity returns the platform identity or UnknownIdentity when it is missing.
func (p Participant) Identity() string {
	if !p.HasIdentity() {
		return UnknownIdentity
	}
	return strings.TrimSpace(p.PlatformIdentity)
}

func IsKnownIdentity(identity string) bool {
	identity = strings.TrimSpace(identity)
	return identity != "" && identity != UnknownIdentity
}

type Vector struct {
	X float64
	Y float64
	Z float64
}

// FarOutOfBounds is where enforcement relocates a banned participant.
var FarOutOfBounds = Vector{X: 10000, Y: 10000, Z: 10000}
