package db

import (
	"context"
	"database/sql"
	"fmt"
	"runtime/debug"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WithTx runs fn in a transaction, committing when it returns nil. A panic inside fn is
// converted to an error after rollback.
func WithTx(ctx context.Context, reason string, fn func(tx *sqlx.Tx) error) (err error) {
	log := zap.L().With(zap.String("reason", reason))
	log.Debug("starting transaction")

	tx, err := Conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}

	var committed bool

	// Ensure that rollback is attempted in case of failure
	defer func() {
		if panicErr := recover(); panicErr != nil {
			log.Error("panic in WithTx", zap.Any("panic", panicErr), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("panic in transaction (%s): %v", reason, panicErr)
		}

		if committed {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil {
			if rbErr == sql.ErrTxDone {
				log.Warn("attempted to roll back transaction, but it was already done")
			} else {
				log.Error("transaction rollback error", zap.Error(rbErr))
			}
		} else {
			log.Debug("transaction rolled back")
		}
	}()

	err = fn(tx)

	if err != nil {
		log.Debug("error in WithTx", zap.Error(err))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("error committing transaction", zap.Error(err))
		return fmt.Errorf("error committing transaction: %v", err)
	}

	committed = true

	log.Debug("committed transaction")

	return nil
}
