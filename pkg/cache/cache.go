package cache

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	keyPrefix = "semcache"
	anyModel  = "*"
)

// ResponseCache stores model replies keyed by a normalized prompt hash.
// An empty model reads the entry written for whichever model answered last.
type ResponseCache interface {
	Get(ctx context.Context, prompt string, companyId uuid.UUID, model string) (string, bool, error)
	Set(ctx context.Context, prompt, response string, companyId uuid.UUID, model string) error
}

// Normalize folds prompts that differ only by case or whitespace onto one key.
func Normalize(prompt string) string {
	return strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
}

// Key builds "semcache:{company}:{model|*}:{blake2b-256 hex}".
func Key(prompt string, companyId uuid.UUID, model string) string {
	if model == "" {
		model = anyModel
	}
	sum := blake2b.Sum256([]byte(Normalize(prompt)))
	return keyPrefix + ":" + companyId.String() + ":" + model + ":" + hex.EncodeToString(sum[:])
}
