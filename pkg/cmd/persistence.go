package cmd

import (
	"strings"

	"github.com/vendura/automation/pkg/persistence"
	"github.com/vendura/automation/pkg/persistence/file"
)

// NewPersistence builds the workflow store from a database URL. Only the
// file provider ships today; the URL scheme keeps the door open for SQL
// backends without changing the flag surface.
func NewPersistence(databaseURL string) persistence.Persistence {
	return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
}
