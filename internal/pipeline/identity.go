package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/oppscout/oppscout/internal/model"
)

// Hash returns the stable identity fingerprint of a posting: the md5 hex of
// the lowercased, trimmed "company-title-location" concatenation. It is
// order-sensitive and case-insensitive, and backs the uniqueness constraint
// at the store boundary, so it must never change shape between releases.
func Hash(company, title, location string) string {
	key := strings.ToLower(strings.TrimSpace(company)) + "-" +
		strings.ToLower(strings.TrimSpace(title)) + "-" +
		strings.ToLower(strings.TrimSpace(location))
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// PostingHash is Hash applied to a posting's identity fields.
func PostingHash(p model.Posting) string {
	return Hash(p.Company, p.Title, p.Location)
}
