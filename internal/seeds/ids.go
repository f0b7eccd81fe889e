package seeds

import (
	"strings"

	"github.com/google/uuid"
)

// Namespace for deterministic seed ids. Stable forever: changing it orphans
// previously seeded farms.
var Namespace = uuid.MustParse("6f1d3c2a-8b4e-5a97-9c0d-2e7f4b1a9c35")

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

// FarmID returns the seed id for a farm name. Case and spacing are ignored.
func FarmID(name string) uuid.UUID {
	canon := strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(name)), " "))
	return v5(Namespace, "farm:"+canon)
}
