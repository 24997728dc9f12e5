// Package docid derives stable document identifiers from page attributes.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// prefixLen is the number of hex characters kept from the digest. 16 hex
// chars carry 64 bits, which keeps accidental collisions negligible at
// corpus scale (tens of thousands of documents).
const prefixLen = 16

// Assign returns the document identifier for a page. It is a pure function
// of (pageid, title): the same page always maps to the same identifier, so
// reruns overwrite rather than duplicate.
func Assign(pageID int64, title string) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(pageID, 10) + ":" + title))
	return hex.EncodeToString(sum[:])[:prefixLen]
}
