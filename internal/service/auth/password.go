package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against its stored hash.
type PasswordVerifier interface {
	// Compare returns nil when the plaintext matches the hash, or an error
	// on mismatch or malformed input.
	Compare(hashedPassword, password string) error
}

// PasswordHasher produces the hash stored for a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PasswordManager bundles both sides of credential handling. Keeping them on
// one type means the cost parameter and algorithm cannot drift between the
// write path and the login path.
type PasswordManager interface {
	PasswordVerifier
	PasswordHasher
}

// BcryptPasswords implements PasswordManager using bcrypt.
type BcryptPasswords struct {
	cost int
}

var _ PasswordManager = (*BcryptPasswords)(nil)

// NewBcryptPasswords creates a PasswordManager hashing at bcrypt's default
// cost.
func NewBcryptPasswords() *BcryptPasswords {
	return &BcryptPasswords{cost: bcrypt.DefaultCost}
}

// NewBcryptPasswordsWithCost creates a PasswordManager hashing at the given
// cost. Tests pass bcrypt.MinCost to keep hashing cheap.
func NewBcryptPasswordsWithCost(cost int) *BcryptPasswords {
	return &BcryptPasswords{cost: cost}
}

// Compare implements PasswordVerifier.
func (p *BcryptPasswords) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Hash implements PasswordHasher.
func (p *BcryptPasswords) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
