// Package credentials hashes and verifies user passwords.
//
// Digests are derived with argon2id from the password and a per-credential
// random salt. Digest and salt are returned separately so they can be stored
// in their own columns; neither the plaintext nor the digest is ever logged.
package credentials

import (
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the number of random bytes mixed into every credential.
const SaltSize = 16

// Params are the argon2id cost parameters.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultParams matches the cost used across the project for key derivation.
var DefaultParams = Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4, KeyLen: 32}

// Store hashes and verifies passwords. It holds no mutable state and is safe
// for concurrent use.
type Store struct {
	params Params
}

func NewStore(p Params) *Store {
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	return &Store{params: p}
}

// Hash returns the digest of password under a fresh random salt.
func (s *Store) Hash(password string) (digest, salt []byte, err error) {
	if password == "" {
		return nil, nil, fmt.Errorf("%w: password is empty", common.ErrValidation)
	}

	salt, err = common.RandomBytes(SaltSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading salt: %v", common.ErrInternal, err)
	}

	return s.derive(password, salt), salt, nil
}

// Verify reports whether password matches digest under salt. A mismatch is
// not an error.
func (s *Store) Verify(password string, digest, salt []byte) (bool, error) {
	if password == "" {
		return false, fmt.Errorf("%w: password is empty", common.ErrValidation)
	}
	if len(digest) == 0 || len(salt) == 0 {
		return false, nil
	}

	candidate := s.derive(password, salt)
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(digest, candidate) == 1, nil
}

func (s *Store) derive(password string, salt []byte) []byte {
	p := s.params
	return argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
}
