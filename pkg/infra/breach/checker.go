package breach

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// Checker answers whether a credential pair is known-compromised or the
// password is on the common-password list. Entries are held as hex SHA-256
// digests of "email:password" so the raw material never sits in memory.
type Checker struct {
	mu       sync.RWMutex
	breached map[string]struct{}
	common   map[string]struct{}
}

// defaultCommonPasswords seeds the common-password list. Deployments extend
// it via AddCommonPassword.
var defaultCommonPasswords = []string{
	"password", "password1", "password123", "123456", "12345678",
	"qwerty", "letmein", "admin", "welcome", "iloveyou",
	"monkey", "dragon", "sunshine", "princess", "football",
}

func NewChecker() *Checker {
	c := &Checker{
		breached: make(map[string]struct{}),
		common:   make(map[string]struct{}),
	}
	for _, p := range defaultCommonPasswords {
		c.common[p] = struct{}{}
	}
	return c
}

// Digest returns the hex SHA-256 of "email:password", lowercasing the email
// first.
func Digest(email, password string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email) + ":" + password))
	return hex.EncodeToString(sum[:])
}

// AddBreached registers a known-compromised credential pair.
func (c *Checker) AddBreached(email, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breached[Digest(email, password)] = struct{}{}
}

// AddBreachedDigest registers a pre-computed digest, e.g. from a breach
// corpus import.
func (c *Checker) AddBreachedDigest(digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breached[strings.ToLower(digest)] = struct{}{}
}

func (c *Checker) AddCommonPassword(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.common[password] = struct{}{}
}

// IsBreached reports whether the exact credential pair is known-compromised.
func (c *Checker) IsBreached(email, password string) bool {
	digest := Digest(email, password)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.breached[digest]
	return ok
}

// IsCommonPassword reports whether the password is on the common list.
// Matching is case-insensitive.
func (c *Checker) IsCommonPassword(password string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.common[strings.ToLower(password)]
	return ok
}
