package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "banlist.json"))
	require.NoError(t, err)

	records := []domain.BanRecord{
		{PlayerName: "Zed", PlatformIdentity: "76561198000000001", BanDate: "2026-03-01 10:00:00", Reason: "Manual"},
		{PlayerName: "Alice", PlatformIdentity: domain.UnknownIdentity, BanDate: "2026-03-01 10:05:00", Reason: "Auto Ban: speed"},
		{PlayerName: "Bob", PlatformIdentity: "42", BanDate: "2026-03-02 08:00:00", Reason: ""},
	}

	require.NoError(t, repo.Save(context.Background(), records))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestRepositoryWritesIndentedLegacyFieldNames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "banlist.json")
	repo, err := NewRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), []domain.BanRecord{
		{PlayerName: "Alice", PlatformIdentity: "", BanDate: "2026-03-01 10:00:00", Reason: "Manual"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "\n  {")
	assert.Contains(t, content, `"PlayerName": "Alice"`)
	assert.Contains(t, content, `"SteamID": "Unknown"`)
	assert.Contains(t, content, `"BanDate": "2026-03-01 10:00:00"`)
	assert.Contains(t, content, `"Reason": "Manual"`)
}

func TestRepositoryLoadMapsNullIdentityToUnknown(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "banlist.json")
	body := `[{"PlayerName":"Alice","SteamID":null,"BanDate":"2026-03-01 10:00:00","Reason":"Manual"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.UnknownIdentity, got[0].PlatformIdentity)
}

func TestRepositoryIdentityOnlyRecordUsesSentinelName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "banlist.json")
	repo, err := NewRepository(path)
	require.NoError(t, err)

	records := []domain.BanRecord{
		{PlatformIdentity: "76561198000000009", BanDate: "2026-03-01 10:00:00"},
		{PlayerName: "Unknown", PlatformIdentity: domain.UnknownIdentity, BanDate: "2026-03-01 10:01:00"},
	}
	require.NoError(t, repo.Save(context.Background(), records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"PlayerName": "Unknown"`)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IdentityOnly())
	assert.Equal(t, "76561198000000009", got[0].PlatformIdentity)
	assert.Equal(t, "Unknown", got[1].PlayerName)
}

func TestRepositoryLoadMissingFile(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrBanListNotFound)
}

func TestRepositoryLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "banlist.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepositoryLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "banlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode ban list")
}

func TestRepositorySaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := NewRepository(filepath.Join(dir, "nested", "banlist.json"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), nil))
	require.NoError(t, repo.Save(context.Background(), []domain.BanRecord{{PlayerName: "A", PlatformIdentity: "1"}}))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.HasSuffix(entries[0].Name(), ".tmp"))
}

func TestRepositoryHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "banlist.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, repo.Save(ctx, nil), context.Canceled)
	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
