// Package toml stores the ban list as a versioned TOML document. It is selected
// when banlist.path ends in .toml.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	banListFileMode = 0o600
	banListDirMode  = 0o700
	tempFilePattern = ".banlist-*.toml.tmp"
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

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
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

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	records := make([]domain.BanRecord, 0, len(file.Bans))
	for _, entry := range file.Bans {
		records = append(records, fromSchema(entry))
	}

	return records, nil
}

func (r *Repository) Save(ctx context.Context, records []domain.BanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := fileSchema{Bans: make([]banSchema, 0, len(records))}
	for _, record := range records {
		file.Bans = append(file.Bans, toSchema(record))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, domain.ErrBanListNotFound
		}
		return fileSchema{}, fmt.Errorf("read ban list: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode ban list: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), banListDirMode); err != nil {
		return fmt.Errorf("create ban list directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode ban list: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
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

	if err := tempFile.Chmod(banListFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp ban list: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp ban list: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace ban list: %w", err)
	}

	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve ban list path: %w", err)
	}

	return filepath.Clean(absPath), nil
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
