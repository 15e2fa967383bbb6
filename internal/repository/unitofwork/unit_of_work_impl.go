package unitofwork

import (
	"context"
	"fmt"

	"ai-support-be/internal/repository/contract"
	"ai-support-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // non-nil between Begin and Commit/Rollback
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is a no-op after Commit, so it can be deferred.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) PromptTemplateRepository() contract.IPromptTemplateRepository {
	return implementation.NewPromptTemplateRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ShippingZoneRepository() contract.IShippingZoneRepository {
	return implementation.NewShippingZoneRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AiKeyRepository() contract.IAiKeyRepository {
	return implementation.NewAiKeyRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AiInteractionRepository() contract.IAiInteractionRepository {
	return implementation.NewAiInteractionRepository(u.getDB())
}
