package service

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// uid converts a pgtype.UUID to a uuid.UUID. NULL maps to uuid.Nil.
func uid(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}
