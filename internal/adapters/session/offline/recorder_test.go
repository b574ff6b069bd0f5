package offline

import (
	"context"
	"testing"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderRecordsActionsInOrder(t *testing.T) {
	r := NewRecorder(New(), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, r.Relocate(ctx, 7, domain.FarOutOfBounds))
	require.NoError(t, r.Incapacitate(ctx, 7))
	_, err := r.DestroyRemnants(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, r.Recover(ctx, 7, domain.FarOutOfBounds))
	for i := 0; i < 3; i++ {
		require.NoError(t, r.SendNoop(ctx, 7, []byte{0}))
	}

	assert.Equal(t, []Action{
		{Kind: ActionRelocate, Target: 7},
		{Kind: ActionIncapacitate, Target: 7},
		{Kind: ActionRemnants, Target: 7},
		{Kind: ActionRecover, Target: 7},
	}, r.Actions())
	assert.Equal(t, 3, r.Count(ActionNoop))
	assert.Equal(t, 1, r.Count(ActionRelocate))
}

func TestRecorderClaimAuthorityMovesRole(t *testing.T) {
	s := New()
	s.Join(domain.Participant{ActorID: 1, DisplayName: "Host", IsLocal: true})
	s.Join(domain.Participant{ActorID: 2, DisplayName: "Eve", IsAuthority: true})
	r := NewRecorder(s, zerolog.Nop())

	require.NoError(t, r.ClaimAuthority(context.Background(), 1))
	authority, ok := s.Authority()
	require.True(t, ok)
	assert.Equal(t, domain.ActorID(1), authority.ActorID)

	require.ErrorIs(t, r.ClaimAuthority(context.Background(), 42), domain.ErrNotAuthority)
	assert.Equal(t, 2, r.Count(ActionClaim))
}

func TestRecorderSendNoopStopsOnCancelledContext(t *testing.T) {
	r := NewRecorder(New(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, r.SendNoop(ctx, 7, nil), context.Canceled)
	assert.Zero(t, r.Count(ActionNoop))
}

func TestRecorderAnnouncements(t *testing.T) {
	r := NewRecorder(New(), zerolog.Nop())
	require.NoError(t, r.Announce(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, r.Announcements())
}
