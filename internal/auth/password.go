package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and checks directory passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
	// NeedsRehash reports whether hash was produced with a different cost
	// than the hasher currently uses.
	NeedsRehash(hash string) bool
}

// BcryptPasswordHasher hashes with a fixed bcrypt cost.
type BcryptPasswordHasher struct {
	cost int
}

// NewBcryptPasswordHasher returns a hasher for cost, clamped to the range
// bcrypt accepts. A cost of zero selects bcrypt.DefaultCost.
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

// Cost returns the bcrypt cost new hashes are made with.
func (h *BcryptPasswordHasher) Cost() int {
	return h.cost
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare returns nil when plain matches hash.
func (h *BcryptPasswordHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

func (h *BcryptPasswordHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}
