package inspection

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RestaurantID derives the deterministic restaurant identifier from the
// stable composite key {license, address, zip, city}. Identical inputs yield
// the identical id across runs and machines; this substitutes for a natural
// key the source data lacks.
//
// City must already be canonicalized — spelling drift in the city field
// would otherwise fracture identity for the same physical restaurant.
func RestaurantID(license, address, zip, city string) string {
	parts := []string{
		normalizeKeyPart(license),
		normalizeKeyPart(address),
		normalizeKeyPart(zip),
		normalizeKeyPart(city),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func normalizeKeyPart(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
