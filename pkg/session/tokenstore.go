package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/ordersync/ordersync/pkg/crypt"
	"github.com/ordersync/ordersync/pkg/storage"
)

// TokenStore persists the opaque session token across process restarts.
// Absence of a stored token means unauthenticated.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// DiskTokenStore keeps the token in a single file on a storage disk,
// AES-GCM encrypted at rest with the configured APP_KEY.
type DiskTokenStore struct {
	disk storage.Disk
	path string
}

// NewDiskTokenStore stores the token at path on disk.
func NewDiskTokenStore(disk storage.Disk, path string) *DiskTokenStore {
	return &DiskTokenStore{disk: disk, path: path}
}

func (d *DiskTokenStore) Load() (string, error) {
	if !d.disk.Exists(d.path) {
		return "", nil
	}
	raw, err := d.disk.Get(d.path)
	if err != nil {
		return "", err
	}

	token, err := crypt.Decrypt(strings.TrimSpace(string(raw)))
	if err != nil {
		// An unreadable token file (changed APP_KEY, corruption) is treated
		// as unauthenticated rather than an error the caller must handle.
		if errors.Is(err, crypt.ErrDecrypt) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (d *DiskTokenStore) Save(token string) error {
	enc, err := crypt.Encrypt(token)
	if err != nil {
		return err
	}
	return d.disk.Put(d.path, []byte(enc))
}

func (d *DiskTokenStore) Clear() error {
	return d.disk.Delete(d.path)
}

// MemoryTokenStore is an in-process TokenStore for tests and for callers
// that do not want persistence.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
