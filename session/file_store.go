package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/password"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltFileName      = "salt"
	sessionFileSuffix = ".session"
)

// ErrStoreNotOpen is returned by FileStore operations before Open succeeds.
var ErrStoreNotOpen = errors.New("session store not opened")

// FileStore writes one file per account under a directory, sealed with XChaCha20-Poly1305.
// The key is derived from a passphrase with Argon2id and a per-directory salt. File names are
// the SHA-256 of the account ID so the directory listing reveals no account names.
type FileStore struct {
	dir        string
	passphrase string
	deriver    *password.Deriver
	now        func() time.Time

	mu   sync.RWMutex
	aead cipher.AEAD
}

// NewFileStore returns a store rooted at dir. Call Open before use.
func NewFileStore(dir, passphrase string, deriver *password.Deriver) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("session: file store directory is empty")
	}
	if passphrase == "" {
		return nil, password.ErrEmptyPassphrase
	}
	if deriver == nil {
		d, err := password.NewDeriver(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		deriver = d
	}
	return &FileStore{
		dir:        dir,
		passphrase: passphrase,
		deriver:    deriver,
		now:        time.Now,
	}, nil
}

// Open creates the directory if needed, loads or creates its salt and derives the key.
func (f *FileStore) Open(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	salt, err := f.loadOrCreateSalt()
	if err != nil {
		return err
	}

	key, err := f.deriver.DeriveKey(f.passphrase, salt)
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.aead = aead
	f.mu.Unlock()
	return nil
}

func (f *FileStore) loadOrCreateSalt() ([]byte, error) {
	path := filepath.Join(f.dir, saltFileName)

	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) == 0 {
			return nil, fmt.Errorf("%w: empty salt file", ErrCorrupt)
		}
		return salt, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	salt, err = f.deriver.NewSalt()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(path, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (f *FileStore) cipher() (cipher.AEAD, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.aead == nil {
		return nil, ErrStoreNotOpen
	}
	return f.aead, nil
}

func (f *FileStore) path(accountID string) string {
	sum := sha256.Sum256([]byte(accountID))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+sessionFileSuffix)
}

func (f *FileStore) Persist(_ context.Context, s *Session) error {
	aead, err := f.cipher()
	if err != nil {
		return err
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, data, []byte(s.AccountID))

	return writeFileAtomic(f.path(s.AccountID), sealed)
}

func (f *FileStore) Load(ctx context.Context, accountID string) (*Session, error) {
	aead, err := f.cipher()
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(f.path(accountID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: short file", ErrCorrupt)
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	data, err := aead.Open(nil, nonce, ciphertext, []byte(accountID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if s.AccountID != accountID {
		return nil, fmt.Errorf("%w: account mismatch", ErrCorrupt)
	}

	if s.Expired(f.now()) {
		if err := f.Remove(ctx, accountID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return s, nil
}

func (f *FileStore) Remove(_ context.Context, accountID string) error {
	if err := os.Remove(f.path(accountID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
