package tester

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Opt-in: needs a reachable docker daemon and pulls real images.
func TestSetupDocker(t *testing.T) {
	if os.Getenv("DOCRIVER_DOCKER_TESTS") == "" {
		t.Skip("set DOCRIVER_DOCKER_TESTS=1 to run container-backed tests")
	}

	teardown, err := SetupDocker()
	assert.NoError(t, err)
	assert.NotNil(t, teardown)
	teardown()
}
