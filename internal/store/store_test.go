package store

import (
	"testing"
)

func TestGetUserByEmail(t *testing.T) {
	// Requires a running Postgres instance
	t.Skip("Requires database connection")
}

func TestCreateUser(t *testing.T) {
	t.Skip("Requires database connection")
}
