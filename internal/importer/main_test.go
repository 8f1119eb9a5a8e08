package importer

import (
	"testing"

	"go.uber.org/goleak"
)

// Every test closes its database, so no pool goroutines may survive.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
