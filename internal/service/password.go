package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemePBKDF2 = "pbkdf2"
	SchemeBcrypt = "bcrypt"

	DefaultIterations = 260000
	DefaultSaltLength = 8

	pbkdf2KeyLen = 32
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	bcryptPrefix = "$2"
	pbkdf2Prefix = "pbkdf2:sha256"
)

// saltSource feeds randomSalt.
var saltSource io.Reader = rand.Reader

var (
	errUnknownHashFormat = errors.New("unknown password hash format")
	errPasswordMismatch  = errors.New("password does not match")
)

// PasswordHasher produces and checks salted password hashes.
//
// PBKDF2 hashes use the encoded form pbkdf2:sha256:<iterations>$<salt>$<hex digest>
// so existing user tables can be carried over. bcrypt hashes are always
// accepted by Verify regardless of Scheme.
type PasswordHasher struct {
	Scheme     string
	Iterations int
	SaltLength int
}

// NewPasswordHasher fills zero fields with defaults.
func NewPasswordHasher(scheme string, iterations, saltLength int) PasswordHasher {
	if scheme == "" {
		scheme = SchemePBKDF2
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if saltLength <= 0 {
		saltLength = DefaultSaltLength
	}
	return PasswordHasher{Scheme: scheme, Iterations: iterations, SaltLength: saltLength}
}

// Hash returns an encoded hash of password.
func (h PasswordHasher) Hash(password string) (string, error) {
	if h.Scheme == SchemeBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(b), nil
	}

	salt, err := randomSalt(h.SaltLength)
	if err != nil {
		return "", err
	}
	digest := pbkdf2Digest(password, salt, h.Iterations)
	return fmt.Sprintf("%s:%d$%s$%s", pbkdf2Prefix, h.Iterations, salt, digest), nil
}

// Verify returns nil if password matches encoded.
func (h PasswordHasher) Verify(encoded, password string) error {
	if strings.HasPrefix(encoded, bcryptPrefix) {
		if err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)); err != nil {
			return errPasswordMismatch
		}
		return nil
	}

	method, rest, ok := strings.Cut(encoded, "$")
	if !ok {
		return errUnknownHashFormat
	}
	salt, want, ok := strings.Cut(rest, "$")
	if !ok {
		return errUnknownHashFormat
	}

	iterStr, found := strings.CutPrefix(method, pbkdf2Prefix+":")
	if !found {
		return errUnknownHashFormat
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return errUnknownHashFormat
	}

	got := pbkdf2Digest(password, salt, iterations)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return errPasswordMismatch
	}
	return nil
}

func pbkdf2Digest(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}

func randomSalt(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	alphabetLen := big.NewInt(int64(len(saltAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(saltSource, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b.WriteByte(saltAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
