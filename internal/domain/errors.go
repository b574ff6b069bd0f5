package domain

import "errors"

var (
	ErrNilParticipant       = errors.New("participant is nil")
	ErrLocalParticipant     = errors.New("local participant cannot be targeted")
	ErrAuthorityParticipant = errors.New("authority holder cannot be targeted")
	ErrInvalidName          = errors.New("player name is empty")
	ErrNameTooLong          = errors.New("player name too long")
	ErrInvalidIdentity      = errors.New("invalid platform identity")
	ErrAlreadyBanned        = errors.New("player already banned")
	ErrNotBanned            = errors.New("player not banned")
	ErrNotAuthority         = errors.New("local participant is not the session authority")
	ErrAlreadyTargeted      = errors.New("participant already targeted")
	ErrNotTargeted          = errors.New("participant not targeted")
	ErrBanListNotFound      = errors.New("ban list not found")
	ErrGraceProtected       = errors.New("player recently unbanned")
	ErrAutoDetectDisabled   = errors.New("auto detection disabled")
	ErrInvalidStrategy      = errors.New("invalid enforcement strategy")
)
