package hash

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

const simplePrefix = "simple_hash_"

type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// New returns the hasher registered under kind ("simple" or "bcrypt").
func New(kind string) (Hasher, error) {
	switch kind {
	case "simple", "":
		return Simple{}, nil
	case "bcrypt":
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}

// Simple is the site's legacy stand-in digest. It is not a password hash in
// any cryptographic sense and exists so stored rows keep verifying.
type Simple struct{}

func (Simple) Hash(password string) (string, error) {
	return SimpleHash(password), nil
}

func (Simple) Verify(stored, password string) bool {
	return stored == SimpleHash(password)
}

// SimpleHash folds UTF-16 code units into a wrapping int32 (h = h*31 + c)
// and renders simple_hash_<abs(h)>_<utf16 length>.
func SimpleHash(password string) string {
	units := utf16.Encode([]rune(password))

	var h int32
	for _, u := range units {
		h = (h << 5) - h + int32(u)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	return simplePrefix + strconv.FormatInt(abs, 10) + "_" + strconv.Itoa(len(units))
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (Bcrypt) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// Check verifies password against stored using whichever algorithm produced
// stored. Unknown formats never match.
func Check(stored, password string) bool {
	switch {
	case strings.HasPrefix(stored, simplePrefix):
		return Simple{}.Verify(stored, password)
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return Bcrypt{}.Verify(stored, password)
	default:
		return false
	}
}
