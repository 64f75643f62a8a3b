package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain pins GO_ENV to "test" so nothing here can reach a real database by accident
func TestMain(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env != "" && env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: tests must run with GO_ENV=test (current GO_ENV=%q)\n", env)
		os.Exit(1)
	}
	os.Setenv("GO_ENV", "test")

	os.Exit(m.Run())
}
