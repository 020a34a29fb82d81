package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/opsconsole/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver and gorm failures onto ledger error kinds.
// Anything it does not recognise is wrapped with op and returned as is.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError(fmt.Sprintf("%s: unique constraint violated", op), err)
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return shared.NewStoreUnavailableError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return shared.NewStoreUnavailableError(err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
