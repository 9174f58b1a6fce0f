// Package envutil resolves the >>key<< indirection convention used for
// values that should come from the run environment rather than the request
// file, most importantly database-credentials paths.
package envutil

import (
	"os"
	"strings"
)

// Check resolves a possibly-indirect configuration value. A value of the
// form >>key<< is replaced with the environment variable KEY (upper-cased);
// anything else is returned unchanged. An indirection with no matching
// environment variable resolves to the empty string, which downstream code
// treats as "not configured".
func Check(value string) string {
	if !strings.HasPrefix(value, ">>") || !strings.HasSuffix(value, "<<") {
		return value
	}
	key := strings.TrimSuffix(strings.TrimPrefix(value, ">>"), "<<")
	return os.Getenv(strings.ToUpper(strings.TrimSpace(key)))
}
