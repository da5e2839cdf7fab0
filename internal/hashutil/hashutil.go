package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashStrings returns a SHA256 hash of the provided strings with newline separators.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PromptKey identifies a relay call by the provider/model it targets, the
// scan type and the prompt text. Identical prompts to the same model share a
// key.
func PromptKey(provider, scanType, prompt string) string {
	return HashStrings(provider, scanType, prompt)
}
