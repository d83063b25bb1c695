package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint returns a short stable identifier for arbitrary content, used
// to correlate log lines without dumping full URLs or prompts. It combines a
// djb2 rolling hash with a truncated SHA-256 suffix. Diagnostics only, never
// cache keys.
func Fingerprint(content string) string {
	var rolling uint32 = 5381
	for i := 0; i < len(content); i++ {
		rolling = rolling*33 + uint32(content[i])
	}
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%08x-%s", rolling, hex.EncodeToString(sum[:4]))
}
