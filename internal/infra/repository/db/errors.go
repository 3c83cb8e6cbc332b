package db

import (
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"gorm.io/gorm"
)

var (
	// ErrStockNotEnough a guarded stock decrement matched no row
	ErrStockNotEnough = errors.New("variant stock not enough")
)

// translateErr maps gorm errors to apperr codes, what names the entity for the message.
func translateErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.NotFoundCode, err, "%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.ConflictCode, err, "%s already exists", what)
	default:
		return err
	}
}
