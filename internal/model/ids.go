package model

import (
	"strings"

	"github.com/google/uuid"
)

var derivedNamespace = uuid.MustParse("5b0d7a52-6a1c-4f51-9a43-1f3c8e9d2b60")

// DerivedID returns a stable id for a record derived from the given parts.
// The same parts always produce the same id.
func DerivedID(parts ...string) string {
	return uuid.NewSHA1(derivedNamespace, []byte(strings.Join(parts, ":"))).String()
}
