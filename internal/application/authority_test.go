package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bnema/session-guard/internal/adapters/session/offline"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authorityFixture struct {
	registryFixture
	session   *offline.Session
	transport *mocks.MockAuthorityTransport
	announcer *mocks.MockAnnouncer
	guard     *AuthorityGuard
}

func eve() domain.Participant {
	return domain.Participant{ActorID: 2, DisplayName: "Eve", PlatformIdentity: "76561198000000002"}
}

func newAuthorityFixture(t *testing.T, session *offline.Session) authorityFixture {
	t.Helper()

	rf := newRegistryFixture(t, session)
	transport := mocks.NewMockAuthorityTransport(t)
	announcer := mocks.NewMockAnnouncer(t)

	guard := NewAuthorityGuard(AuthorityGuardDeps{
		Session:   session,
		Transport: transport,
		Registry:  rf.registry,
		Announcer: announcer,
		Clock:     rf.clock,
		Cooldown:  5 * time.Second,
		Logger:    zerolog.Nop(),
	})

	return authorityFixture{
		registryFixture: rf,
		session:         session,
		transport:       transport,
		announcer:       announcer,
		guard:           guard,
	}
}

func TestAuthorityGuardRefusesHijackAndBans(t *testing.T) {
	f := newAuthorityFixture(t, hostSession(eve()))
	f.guard.OnJoinSession()
	require.Equal(t, domain.ActorID(1), f.guard.State().OriginalAuthority)

	f.transport.EXPECT().ClaimAuthority(mockAnyContext(), domain.ActorID(1)).Return(nil).Once()
	f.announcer.EXPECT().Announce(mockAnyContext(), "Player Eve was banned for attempting to steal host").Return(nil).Once()

	f.clock.Advance(time.Second)
	allowed := f.guard.ValidateTransfer(context.Background(), eve())

	assert.False(t, allowed)
	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Eve", list[0].PlayerName)
	assert.Equal(t, "76561198000000002", list[0].PlatformIdentity)
	assert.True(t, strings.Contains(list[0].Reason, "host steal attempt"))
	assert.Equal(t, []domain.ActorID{2}, f.guard.State().Suspects())
}

func TestAuthorityGuardReclaimMayReenter(t *testing.T) {
	session := hostSession(eve())
	f := newAuthorityFixture(t, session)
	f.guard.OnJoinSession()

	f.transport.EXPECT().ClaimAuthority(mockAnyContext(), domain.ActorID(1)).
		Run(func(ctx context.Context, actor domain.ActorID) {
			host, _ := session.Participant(actor)
			assert.True(t, f.guard.ValidateTransfer(ctx, host))
		}).
		Return(nil).
		Once()
	f.announcer.EXPECT().Announce(mockAnyContext(), mockAnyContext()).Return(errors.New("chat closed")).Once()

	f.clock.Advance(time.Second)
	assert.False(t, f.guard.ValidateTransfer(context.Background(), eve()))
	assert.True(t, f.registry.IsBanned("Eve"))
}

func TestAuthorityGuardBootstrapSetsOriginal(t *testing.T) {
	f := newAuthorityFixture(t, hostSession(eve()))

	assert.True(t, f.guard.ValidateTransfer(context.Background(), eve()))
	state := f.guard.State()
	assert.Equal(t, domain.ActorID(2), state.OriginalAuthority)
	assert.Equal(t, f.clock.Now(), state.LastLegitimateChange)
}

func TestAuthorityGuardOriginalRefreshesCooldown(t *testing.T) {
	f := newAuthorityFixture(t, hostSession(eve()))
	f.guard.OnJoinSession()

	f.clock.Advance(4 * time.Second)
	host, _ := f.session.Participant(1)
	assert.True(t, f.guard.ValidateTransfer(context.Background(), host))
	assert.Equal(t, f.clock.Now(), f.guard.State().LastLegitimateChange)
}

func TestAuthorityGuardAllowsTransferAfterCooldown(t *testing.T) {
	f := newAuthorityFixture(t, hostSession(eve()))
	f.guard.OnJoinSession()

	f.clock.Advance(6 * time.Second)
	assert.True(t, f.guard.ValidateTransfer(context.Background(), eve()))
	assert.Equal(t, domain.ActorID(2), f.guard.State().OriginalAuthority)
	assert.Zero(t, f.registry.Len())
}

func TestAuthorityGuardAllowsTransferWhenOriginalLeft(t *testing.T) {
	session := hostSession(eve())
	f := newAuthorityFixture(t, session)
	f.guard.OnJoinSession()

	carol := domain.Participant{ActorID: 3, DisplayName: "Carol"}
	session.Join(carol)
	session.Leave(1)

	f.clock.Advance(time.Second)
	assert.True(t, f.guard.ValidateTransfer(context.Background(), carol))
	assert.Zero(t, f.registry.Len())
}

func TestAuthorityGuardDeniesWithoutBanWhenNotOriginal(t *testing.T) {
	session := offline.New()
	session.Join(domain.Participant{ActorID: 1, DisplayName: "Host", IsAuthority: true})
	session.Join(eve())
	session.Join(domain.Participant{ActorID: 3, DisplayName: "Me", IsLocal: true})
	f := newAuthorityFixture(t, session)
	f.guard.OnJoinSession()

	f.clock.Advance(time.Second)
	assert.False(t, f.guard.ValidateTransfer(context.Background(), eve()))
	assert.Zero(t, f.registry.Len())
}

func TestAuthorityGuardClaimFailureSkipsBan(t *testing.T) {
	f := newAuthorityFixture(t, hostSession(eve()))
	f.guard.OnJoinSession()
	f.transport.EXPECT().ClaimAuthority(mockAnyContext(), domain.ActorID(1)).Return(errors.New("offline")).Once()

	f.clock.Advance(time.Second)
	assert.False(t, f.guard.ValidateTransfer(context.Background(), eve()))
	assert.Zero(t, f.registry.Len())
}

func TestAuthorityGuardMonitorCatchesOutOfBandChange(t *testing.T) {
	session := hostSession(eve())
	f := newAuthorityFixture(t, session)
	f.guard.OnJoinSession()

	f.guard.Monitor(context.Background())
	require.True(t, session.SetAuthority(2))

	f.transport.EXPECT().ClaimAuthority(mockAnyContext(), domain.ActorID(1)).
		Run(func(context.Context, domain.ActorID) { session.SetAuthority(1) }).
		Return(nil).
		Once()
	f.announcer.EXPECT().Announce(mockAnyContext(), mockAnyContext()).Return(nil).Once()

	f.guard.Monitor(context.Background())

	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Eve", list[0].PlayerName)
	assert.Equal(t, ReasonHostStealOutOfBand, list[0].Reason)

	f.guard.Monitor(context.Background())
	assert.Equal(t, domain.ActorID(1), f.guard.State().OriginalAuthority)
}

func TestAuthorityGuardMonitorAdoptsChangeWhenNotOriginal(t *testing.T) {
	session := offline.New()
	session.Join(domain.Participant{ActorID: 1, DisplayName: "Host", IsAuthority: true})
	session.Join(eve())
	session.Join(domain.Participant{ActorID: 3, DisplayName: "Me", IsLocal: true})
	f := newAuthorityFixture(t, session)
	f.guard.OnJoinSession()

	require.True(t, session.SetAuthority(2))
	f.guard.Monitor(context.Background())

	assert.Equal(t, domain.ActorID(2), f.guard.State().OriginalAuthority)
	assert.Zero(t, f.registry.Len())
}

func TestAuthorityGuardOnJoinAloneMakesLocalOriginal(t *testing.T) {
	session := offline.New()
	session.Join(domain.Participant{ActorID: 4, DisplayName: "Solo", IsLocal: true, IsAuthority: true})
	f := newAuthorityFixture(t, session)

	f.guard.OnJoinSession()
	assert.Equal(t, domain.ActorID(4), f.guard.State().OriginalAuthority)
}

func TestAuthorityGuardIgnoredOutsideSession(t *testing.T) {
	f := newAuthorityFixture(t, offline.New())

	assert.True(t, f.guard.ValidateTransfer(context.Background(), eve()))
	f.guard.Monitor(context.Background())
	assert.False(t, f.guard.State().HasOriginal())
}
