// Package jsonfile stores the ban list as an indented JSON array, the format
// shared with the in-game ban editor.
package jsonfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
	json "github.com/goccy/go-json"
)

const (
	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".banlist-*.json.tmp"
	indent          = "  "
)

type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.BanRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("ban list path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ban list path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockForPath(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Load(ctx context.Context) ([]domain.BanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrBanListNotFound
		}
		return nil, fmt.Errorf("read ban list: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.BanRecord{}, nil
	}

	var entries []recordSchema
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ban list: %w", err)
	}

	records := make([]domain.BanRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, fromSchema(entry))
	}
	return records, nil
}

func (r *Repository) Save(ctx context.Context, records []domain.BanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make([]recordSchema, 0, len(records))
	for _, record := range records {
		entries = append(entries, toSchema(record))
	}

	data, err := json.MarshalIndent(entries, "", indent)
	if err != nil {
		return fmt.Errorf("encode ban list: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeAtomic(r.path, data)
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create ban list directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp ban list: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp ban list: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp ban list: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp ban list: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace ban list: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
