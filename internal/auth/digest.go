package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Digest hashes and verifies passwords. Hashing is one-way.
type Digest interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// BcryptDigest is a bcrypt Digest.
type BcryptDigest struct {
	Cost int
}

// NewBcryptDigest returns a digest using cost, or bcrypt.DefaultCost when
// cost is out of range.
func NewBcryptDigest(cost int) BcryptDigest {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptDigest{Cost: cost}
}

func (d BcryptDigest) Hash(plain string) (string, error) {
	const op = "auth.BcryptDigest.Hash"
	cost := d.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

func (d BcryptDigest) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
