package shared

import (
	"os"
	"strings"
)

const EnvHTTPDebugMode = "HTTP_DEBUG_MODE"

// IsHTTPDebugMode checks if HTTP debug responses (internal error detail in
// 500 bodies) are enabled via environment variable.
func IsHTTPDebugMode() bool {
	debugMode := os.Getenv(EnvHTTPDebugMode)
	return strings.ToLower(debugMode) == "true" || debugMode == "1"
}
