// Package guard switches the process into test mode. Test packages that build the
// application runtime import it for its side effect.
package guard

import (
	"os"
	"sync"
)

// TestModeEnv mirrors the flag read by app.InTestMode.
const TestModeEnv = "BACKOFFICE_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(TestModeEnv) == "" {
			_ = os.Setenv(TestModeEnv, "1")
		}
	})
}
