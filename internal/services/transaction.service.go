package services

import (
	"context"
	"server/internal/database"
	"server/internal/logger"

	"gorm.io/gorm"
)

type transactionKey struct{}

// TransactionService runs a function inside one gorm transaction carried in
// the context, so repositories participate without knowing about each other.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("transactionService"),
	}
}

func (s *TransactionService) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	log := s.log.Function("WithTransaction")

	tx := s.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	txCtx := context.WithValue(ctx, transactionKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			log.Er("failed to rollback transaction", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

// GetTransaction returns the transaction carried in ctx, if any. Repositories
// call this to join an in-flight transaction transparently.
func GetTransaction(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(transactionKey{}).(*gorm.DB)
	return tx, ok
}
