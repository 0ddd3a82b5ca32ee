// Package storage holds the Postgres-backed implementations of the engine's
// store ports. Invariant-bearing writes are conditional UPDATEs decided by
// RowsAffected, never a read followed by a save.
package storage

import (
	"gorm.io/gorm/clause"
)

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
