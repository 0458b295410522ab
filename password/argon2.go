package password

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	minPassBytes          = 1
)

// ErrEmptyPassphrase is returned when a key is requested for an empty passphrase.
var ErrEmptyPassphrase = errors.New("passphrase must not be empty")

// Config holds Argon2id cost parameters.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns parameters suitable for interactive unlock of a local store.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Deriver turns passphrases into fixed-length keys.
type Deriver struct {
	config Config
}

// NewDeriver validates cfg and returns a Deriver.
func NewDeriver(cfg Config) (*Deriver, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Deriver{config: cfg}, nil
}

// KeyLength returns the length of derived keys in bytes.
func (d *Deriver) KeyLength() int {
	return int(d.config.KeyLength)
}

// NewSalt returns a random salt of the configured length.
func (d *Deriver) NewSalt() ([]byte, error) {
	salt := make([]byte, d.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey derives a key from passphrase and salt. The same inputs always yield the
// same key.
func (d *Deriver) DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(passphrase) < minPassBytes {
		return nil, ErrEmptyPassphrase
	}
	if uint32(len(salt)) < minSaltLength {
		return nil, errors.New("invalid salt length")
	}
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		d.config.Time,
		d.config.Memory,
		d.config.Parallelism,
		d.config.KeyLength,
	), nil
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	return nil
}
