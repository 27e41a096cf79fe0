package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vipin760/hand-pass-BE/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(&config.DatabaseConfig{
		User:     "scanner",
		Password: "secret",
		Host:     "db.internal",
		Port:     "3306",
		Name:     "handpass",
	})

	assert.Contains(t, dsn, "scanner:secret@tcp(db.internal:3306)/handpass")
	assert.Contains(t, dsn, "parseTime=true")
	// Scan timestamps must stay in the server's zone so DATE() bucketing
	// agrees with the local dates attendance derivation uses.
	assert.Contains(t, dsn, "loc=Local")
}
