package application

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/session-guard/internal/adapters/repo/jsonfile"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBanAddsSingleRecord(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := mallory()

	require.NoError(t, f.registry.Ban(&p, p.PlatformIdentity, "Griefing"))

	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Mallory", list[0].PlayerName)
	assert.Equal(t, "76561198000000007", list[0].PlatformIdentity)
	assert.Equal(t, "Griefing", list[0].Reason)
	assert.Equal(t, f.clock.Now().Format(domain.BanDateLayout), list[0].BanDate)

	renamed := p
	renamed.DisplayName = "Mallory2"
	err := f.registry.Ban(&renamed, p.PlatformIdentity, "again")
	require.ErrorIs(t, err, domain.ErrAlreadyBanned)

	err = f.registry.Ban(&p, "", "again")
	require.ErrorIs(t, err, domain.ErrAlreadyBanned)
	assert.Equal(t, 1, f.registry.Len())
}

func TestRegistryBanRejectsInvalidParticipants(t *testing.T) {
	f := newRegistryFixture(t, hostSession())

	tests := []struct {
		name string
		p    *domain.Participant
		want error
	}{
		{name: "nil", p: nil, want: domain.ErrNilParticipant},
		{name: "local", p: &domain.Participant{ActorID: 1, DisplayName: "Host", IsLocal: true}, want: domain.ErrLocalParticipant},
		{name: "authority", p: &domain.Participant{ActorID: 2, DisplayName: "Boss", IsAuthority: true}, want: domain.ErrAuthorityParticipant},
		{name: "blank name", p: &domain.Participant{ActorID: 3, DisplayName: "   "}, want: domain.ErrInvalidName},
		{name: "long name", p: &domain.Participant{ActorID: 4, DisplayName: strings.Repeat("x", 101)}, want: domain.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.registry.Ban(tt.p, "123", "reason")
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.Zero(t, f.registry.Len())
}

func TestRegistryLookupsAreCaseInsensitive(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := domain.Participant{ActorID: 9, DisplayName: "Alice", PlatformIdentity: "76561198000000009"}
	require.NoError(t, f.registry.Ban(&p, "", ""))

	for i := 0; i < 2; i++ {
		assert.True(t, f.registry.IsBanned("alice"))
		assert.True(t, f.registry.IsBanned(" ALICE "))
		assert.True(t, f.registry.IsBannedByPlatformIdentity("76561198000000009"))
	}
	assert.False(t, f.registry.IsBanned("bob"))
	assert.False(t, f.registry.IsBanned(""))
	assert.False(t, f.registry.IsBannedByPlatformIdentity(domain.UnknownIdentity))
	assert.False(t, f.registry.IsBannedByPlatformIdentity(""))
}

func TestRegistryUnknownIdentityNeverMatches(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := domain.Participant{ActorID: 9, DisplayName: "Alice"}
	require.NoError(t, f.registry.Ban(&p, domain.UnknownIdentity, ""))

	other := domain.Participant{ActorID: 10, DisplayName: "Bob"}
	require.NoError(t, f.registry.Ban(&other, domain.UnknownIdentity, ""))

	assert.Equal(t, 2, f.registry.Len())
	assert.False(t, f.registry.IsBannedByPlatformIdentity(domain.UnknownIdentity))
	assert.False(t, f.registry.IsParticipantBanned(domain.Participant{ActorID: 11, DisplayName: "Carol"}))
}

func TestRegistryIsParticipantBannedUsesIdentity(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	require.NoError(t, f.registry.BanByPlatformIdentity("76561198000000007", "alt account"))

	renamed := domain.Participant{ActorID: 12, DisplayName: "NotMallory", PlatformIdentity: "76561198000000007"}
	assert.True(t, f.registry.IsParticipantBanned(renamed))

	record, ok := f.registry.Find(renamed)
	require.True(t, ok)
	assert.True(t, record.IdentityOnly())
	assert.Equal(t, "76561198000000007", record.Label())
	assert.False(t, f.registry.IsBanned(domain.UnknownIdentity))
}

func TestRegistryPlayerNamedUnknownIsIndexed(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := domain.Participant{ActorID: 9, DisplayName: "Unknown"}

	require.NoError(t, f.registry.Ban(&p, "", ""))
	require.ErrorIs(t, f.registry.Ban(&p, "", ""), domain.ErrAlreadyBanned)
	require.ErrorIs(t, f.registry.BanByName("unknown", ""), domain.ErrAlreadyBanned)

	assert.Equal(t, 1, f.registry.Len())
	assert.True(t, f.registry.IsBanned("UNKNOWN"))
	assert.True(t, f.registry.IsParticipantBanned(p))
	assert.False(t, f.registry.IsBannedByPlatformIdentity(domain.UnknownIdentity))

	removed, ok := f.registry.Unban("unknown", "")
	require.True(t, ok)
	assert.Equal(t, "Unknown", removed.PlayerName)
	assert.Zero(t, f.registry.Len())
}

func TestRegistryBanByNameResolvesIdentityFromRoster(t *testing.T) {
	f := newRegistryFixture(t, hostSession(mallory()))

	require.NoError(t, f.registry.BanByName("mallory", "manual"))

	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "mallory", list[0].PlayerName)
	assert.Equal(t, "76561198000000007", list[0].PlatformIdentity)
}

func TestRegistryBanByNameRejectsLocalParticipant(t *testing.T) {
	f := newRegistryFixture(t, hostSession())

	err := f.registry.BanByName("host", "")
	require.ErrorIs(t, err, domain.ErrLocalParticipant)
	assert.Zero(t, f.registry.Len())
}

func TestRegistryBanByPlatformIdentityResolvesName(t *testing.T) {
	f := newRegistryFixture(t, hostSession(mallory()))

	require.NoError(t, f.registry.BanByPlatformIdentity(" 76561198000000007 ", ""))

	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Mallory", list[0].PlayerName)
	assert.Equal(t, "76561198000000007", list[0].PlatformIdentity)
}

func TestRegistryBanByPlatformIdentityValidates(t *testing.T) {
	f := newRegistryFixture(t, hostSession())

	for _, id := range []string{"", "abc", "123456789012345678901"} {
		err := f.registry.BanByPlatformIdentity(id, "")
		require.ErrorIs(t, err, domain.ErrInvalidIdentity, id)
	}
	assert.Zero(t, f.registry.Len())
}

func TestRegistryUnbanByNameThenIdentity(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	alice := domain.Participant{ActorID: 2, DisplayName: "Alice", PlatformIdentity: "100"}
	bob := domain.Participant{ActorID: 3, DisplayName: "Bob", PlatformIdentity: "200"}
	require.NoError(t, f.registry.Ban(&alice, "", ""))
	require.NoError(t, f.registry.Ban(&bob, "", ""))

	removed, ok := f.registry.Unban("ALICE", "")
	require.True(t, ok)
	assert.Equal(t, "Alice", removed.PlayerName)
	assert.True(t, f.grace.IsProtected("alice"))

	removed, ok = f.registry.Unban("nobody", "200")
	require.True(t, ok)
	assert.Equal(t, "Bob", removed.PlayerName)

	_, ok = f.registry.Unban("nobody", "300")
	assert.False(t, ok)
	_, ok = f.registry.Unban(domain.UnknownIdentity, domain.UnknownIdentity)
	assert.False(t, ok)

	assert.Zero(t, f.registry.Len())
}

func TestRegistryBanClearsGraceEntry(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	alice := domain.Participant{ActorID: 2, DisplayName: "Alice"}
	require.NoError(t, f.registry.Ban(&alice, "", ""))
	_, ok := f.registry.Unban("Alice", "")
	require.True(t, ok)
	require.True(t, f.grace.IsProtected("Alice"))

	require.NoError(t, f.registry.Ban(&alice, "", ""))
	assert.False(t, f.grace.IsProtected("Alice"))
}

func TestRegistryConcurrentBansAreNotLost(t *testing.T) {
	f := newRegistryFixture(t, hostSession())

	var wg sync.WaitGroup
	for _, name := range []string{"Alice", "Bob"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p := domain.Participant{ActorID: 5, DisplayName: name}
			assert.NoError(t, f.registry.Ban(&p, "", "overlap"))
		}(name)
	}
	wg.Wait()

	flush(t, f.registry)
	assert.True(t, f.registry.IsBanned("Alice"))
	assert.True(t, f.registry.IsBanned("Bob"))

	saved, _, _ := f.repo.snapshot()
	assert.Len(t, saved, 2)
}

func TestRegistryListIsACopy(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := mallory()
	require.NoError(t, f.registry.Ban(&p, "", ""))

	list := f.registry.List()
	list[0].PlayerName = "tampered"

	assert.Equal(t, "Mallory", f.registry.List()[0].PlayerName)
}

func TestRegistryWritesEmptyListWhenMissing(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	flush(t, f.registry)

	saved, exists, saves := f.repo.snapshot()
	assert.True(t, exists)
	assert.Empty(t, saved)
	assert.Equal(t, 1, saves)
}

func TestRegistryStartsEmptyWhenLoadFails(t *testing.T) {
	repo := newInMemoryBanRepo()
	repo.loadErr = errDiskFull

	registry := NewRegistry(context.Background(), repo, RegistryDeps{Logger: zerolog.Nop()})
	t.Cleanup(registry.Close)

	assert.Zero(t, registry.Len())
	_, exists, _ := repo.snapshot()
	assert.False(t, exists)
}

func TestRegistryLoadNormalizesMissingIdentity(t *testing.T) {
	f := newRegistryFixture(t, hostSession(), domain.BanRecord{PlayerName: "Alice", PlatformIdentity: "", BanDate: "2026-01-01 00:00:00"})

	list := f.registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.UnknownIdentity, list[0].PlatformIdentity)
	assert.True(t, f.registry.IsBanned("alice"))
}

func TestRegistrySaveFailureIsNotSurfaced(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	flush(t, f.registry)

	f.repo.mu.Lock()
	f.repo.saveErr = errDiskFull
	f.repo.mu.Unlock()

	p := mallory()
	require.NoError(t, f.registry.Ban(&p, "", ""))
	assert.True(t, f.registry.IsBanned("Mallory"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorIs(t, f.registry.Flush(ctx), errDiskFull)

	f.repo.mu.Lock()
	f.repo.saveErr = nil
	f.repo.mu.Unlock()

	other := domain.Participant{ActorID: 8, DisplayName: "Trent"}
	require.NoError(t, f.registry.Ban(&other, "", ""))
	flush(t, f.registry)

	saved, _, _ := f.repo.snapshot()
	assert.Len(t, saved, 2)
}

func TestRegistryResetPersistsEmptyList(t *testing.T) {
	f := newRegistryFixture(t, hostSession())
	p := mallory()
	require.NoError(t, f.registry.Ban(&p, "", ""))

	f.registry.Reset()
	flush(t, f.registry)

	assert.Zero(t, f.registry.Len())
	assert.False(t, f.registry.IsBanned("Mallory"))
	saved, _, _ := f.repo.snapshot()
	assert.Empty(t, saved)
}

func TestRegistryRoundTripThroughJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.json")
	clock := newManualClock()

	repo, err := jsonfile.NewRepository(path)
	require.NoError(t, err)

	first := NewRegistry(context.Background(), repo, RegistryDeps{Clock: clock, Logger: zerolog.Nop()})
	for i, name := range []string{"Zed", "Alice", "Bob"} {
		p := domain.Participant{ActorID: domain.ActorID(i + 2), DisplayName: name}
		identity := ""
		if name != "Alice" {
			identity = "7656119800000000" + string(rune('1'+i))
		}
		require.NoError(t, first.Ban(&p, identity, "reason "+name))
		clock.Advance(time.Minute)
	}
	flush(t, first)
	first.Close()

	second := NewRegistry(context.Background(), repo, RegistryDeps{Logger: zerolog.Nop()})
	t.Cleanup(second.Close)

	assert.Equal(t, first.List(), second.List())
	assert.True(t, second.IsBannedByPlatformIdentity("76561198000000001"))
}
