package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Word lists for generated aliases. Short, unambiguous, easy to read aloud
// over the phone during study support calls.
var (
	aliasAdjectives = []string{
		"amber", "brisk", "calm", "clear", "coral", "crisp",
		"dusky", "eager", "fresh", "gentle", "golden", "happy",
		"ivory", "jade", "keen", "lively", "mellow", "noble",
		"olive", "plain", "quiet", "rustic", "silver", "vivid",
	}
	aliasNouns = []string{
		"aspen", "badger", "cedar", "comet", "coyote", "crane",
		"falcon", "fern", "harbor", "heron", "lark", "maple",
		"meadow", "otter", "pebble", "pine", "prairie", "raven",
		"ridge", "river", "sparrow", "summit", "willow", "wren",
	}
)

// passphraseAlphabet avoids visually ambiguous characters (0/O, 1/l/I).
const passphraseAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateAlias produces a human-typable participant alias of the form
// adjective-noun-NNNN. Roughly 5.7M combinations; uniqueness is enforced
// by the identities.alias unique index, callers retry on collision.
func GenerateAlias() (string, error) {
	adj, err := pick(aliasAdjectives)
	if err != nil {
		return "", fmt.Errorf("generate alias: %w", err)
	}
	noun, err := pick(aliasNouns)
	if err != nil {
		return "", fmt.Errorf("generate alias: %w", err)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate alias: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", adj, noun, n.Int64()), nil
}

// GeneratePassphrase produces a random passphrase of the given length from
// an unambiguous alphabet. The plaintext is shown to the participant exactly
// once; only its bcrypt hash is stored.
func GeneratePassphrase(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("generate passphrase: length must be positive (got %d)", length)
	}

	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(passphraseAlphabet)))
	for range length {
		i, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate passphrase: %w", err)
		}
		sb.WriteByte(passphraseAlphabet[i.Int64()])
	}
	return sb.String(), nil
}

func pick(words []string) (string, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", err
	}
	return words[i.Int64()], nil
}
