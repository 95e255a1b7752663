package integration

import (
	"os"
	"testing"
)

// BaseURL points the suite at a running API instance.
var BaseURL = "http://localhost:8080"

func TestMain(m *testing.M) {
	if base := os.Getenv("API_BASE_URL"); base != "" {
		BaseURL = base
	}

	os.Exit(m.Run())
}

// skipWithoutServer skips the suite unless API_BASE_URL is set; these tests
// need a live server and database.
func skipWithoutServer(t *testing.T) {
	t.Helper()
	if os.Getenv("API_BASE_URL") == "" {
		t.Skip("API_BASE_URL not set, skipping integration tests")
	}
}
