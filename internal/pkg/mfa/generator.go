package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeGenerator defines an interface for generating backup codes.
type CodeGenerator interface {
	// Generate returns the full set of unique plaintext backup codes or an
	// error if the random source fails.
	Generate() ([]string, error)
}

// Character sets for pronounceable code generation. Vowel/consonant
// alternation keeps codes easy to read out and type during a lockout.
const (
	consonants = "bcdfghjklmnpqrstvwxz"
	vowels     = "aeiou"
)

// SetSize is the number of backup codes issued per enrollment.
const SetSize = 6

// BackupCode generates cryptographically secure pronounceable backup codes.
//
// Each code is two five-letter groups joined by a dash, every group
// alternating consonant and vowel:
//
//	bodur-tapis
type BackupCode struct{}

// NewBackupCode returns a new BackupCode generator.
func NewBackupCode() *BackupCode {
	return &BackupCode{}
}

// Generate produces a set of unique plaintext codes.
//
// It returns exactly SetSize codes drawn from crypto/rand.
func (bc *BackupCode) Generate() ([]string, error) {
	out := make([]string, 0, SetSize)
	seen := make(map[string]struct{}, SetSize)

	for len(out) < SetSize {
		code, err := bc.generateCode()
		if err != nil {
			return nil, err
		}

		// extremely unlikely, but prevents accidental duplicates
		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

func (bc *BackupCode) generateCode() (string, error) {
	first, err := bc.pronounceableGroup()
	if err != nil {
		return "", err
	}
	second, err := bc.pronounceableGroup()
	if err != nil {
		return "", err
	}

	return first + "-" + second, nil
}

// pronounceableGroup builds one consonant-vowel-consonant-vowel-consonant run.
func (bc *BackupCode) pronounceableGroup() (string, error) {
	var sb strings.Builder
	sb.Grow(5)

	for i := 0; i < 5; i++ {
		set := consonants
		if i%2 == 1 {
			set = vowels
		}

		idx, err := bc.randInt(len(set))
		if err != nil {
			return "", err
		}
		sb.WriteByte(set[idx])
	}

	return sb.String(), nil
}

func (bc *BackupCode) randInt(max int) (int, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
