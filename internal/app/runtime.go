package app

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// testModeEnv is set by internal/testing/guard for every test binary that builds the runtime.
const testModeEnv = "BACKOFFICE_TEST_MODE"

var testMode struct {
	once sync.Once
	on   atomic.Bool
}

// parseTestMode accepts the spellings strconv.ParseBool does; anything else is off.
func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && on
}

func detectTestMode() {
	testMode.on.Store(parseTestMode(os.Getenv(testModeEnv)))
}

// InTestMode reports whether cmd entrypoints should return before opening connections.
func InTestMode() bool {
	testMode.once.Do(detectTestMode)
	return testMode.on.Load()
}

// RefreshTestMode re-reads the flag after the environment changed.
func RefreshTestMode() {
	testMode.once.Do(func() {})
	detectTestMode()
}
