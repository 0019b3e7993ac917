package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// KeyLength is the fixed size of every digest in bytes.
	KeyLength  = 32
	saltLength = 16
)

var ErrInvalidParams = errors.New("credential: invalid argon2 parameters")

// Params are the argon2id cost settings.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams follows the RFC 9106 second recommended option.
var DefaultParams = Params{
	Time:      3,
	MemoryKiB: 64 * 1024,
	Threads:   4,
}

// Digest is a salted one-way PIN digest. The zero value matches nothing.
type Digest struct {
	salt   []byte
	key    []byte
	params Params
}

// IsZero reports whether the digest was never set.
func (d Digest) IsZero() bool {
	return len(d.key) == 0
}

// Hasher computes and verifies PIN digests with fixed argon2id parameters.
type Hasher struct {
	params Params
}

func NewHasher(params Params) (*Hasher, error) {
	if params.Time == 0 || params.Threads == 0 || params.MemoryKiB < 8*uint32(params.Threads) {
		return nil, fmt.Errorf("%w: time=%d memory=%dKiB threads=%d",
			ErrInvalidParams, params.Time, params.MemoryKiB, params.Threads)
	}
	return &Hasher{params: params}, nil
}

func NewDefaultHasher() *Hasher {
	return &Hasher{params: DefaultParams}
}

// Digest hashes pin under a fresh random salt.
func (h *Hasher) Digest(pin string) (Digest, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return Digest{}, fmt.Errorf("credential: read salt: %w", err)
	}
	return Digest{
		salt:   salt,
		key:    h.derive(pin, salt, h.params),
		params: h.params,
	}, nil
}

// Decoy derives a digest of the empty PIN under a fixed all-zero salt. It
// needs no randomness, so it cannot fail, and verifying against it costs the
// same as verifying against a real digest from h.
func (h *Hasher) Decoy() Digest {
	salt := make([]byte, saltLength)
	return Digest{
		salt:   salt,
		key:    h.derive("", salt, h.params),
		params: h.params,
	}
}

// Verify recomputes the digest of candidate with the salt and parameters
// stored in d and compares it in constant time.
func (h *Hasher) Verify(d Digest, candidate string) bool {
	if d.IsZero() {
		return false
	}
	key := h.derive(candidate, d.salt, d.params)
	return subtle.ConstantTimeCompare(key, d.key) == 1
}

func (h *Hasher) derive(pin string, salt []byte, p Params) []byte {
	return argon2.IDKey([]byte(pin), salt, p.Time, p.MemoryKiB, p.Threads, KeyLength)
}
