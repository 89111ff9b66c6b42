// File: internal/trace/main_test.go
package trace

import (
	"testing"

	"go.uber.org/goleak"
)

// The recorder and sinks must not leave goroutines behind after End.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
