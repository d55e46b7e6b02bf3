package mongodb

import (
	"errors"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateError maps driver errors onto the application error kinds.
func translateError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &apperror.Error{Kind: apperror.KindNotFound, Op: op, Message: entity + " not found", Err: err}
	}
	if mongo.IsDuplicateKeyError(err) {
		return &apperror.Error{Kind: apperror.KindStateConflict, Op: op, Message: entity + " already exists", Err: err}
	}
	return apperror.Dependency(op, "database operation failed", err)
}

// pageBounds converts page/limit into skip/limit for a find query.
func pageBounds(page, limit int) (skip int64, size int64) {
	page, limit = utils.NormalizePagination(page, limit)
	return int64((page - 1) * limit), int64(limit)
}
