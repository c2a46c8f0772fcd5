package core

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// MessageID derives the content-hash id for a log entry whose envelope
// carries no key of its own. Ids derived this way are stable across
// reindexes because they depend only on the entry bytes.
func MessageID(value []byte) string {
	sum := sha256.Sum256(value)
	return fmt.Sprintf("%%%s.sha256", base64.StdEncoding.EncodeToString(sum[:]))
}
