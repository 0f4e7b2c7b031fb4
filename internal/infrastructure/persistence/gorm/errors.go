package gorm

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

const pgForeignKeyViolation = "23503"

// translateError maps driver and GORM errors onto the repository sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return outbound.ErrRecordNotFound
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", outbound.ErrForeignKeyViolation, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", outbound.ErrForeignKeyViolation, pgErr.ConstraintName)
	}

	return err
}
