// Package defaults enforces the "exactly one default per scope" invariant
// shared by addresses, payment cards, UPI handles and themes. Each entity
// carries a boolean flag column; within a scope (a user, or the whole table
// for themes) at most one row may have the flag set.
package defaults

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found in scope")

	// ErrActiveRecord is returned when deleting the row that currently holds
	// the flag in a global scope; callers must activate a replacement first.
	ErrActiveRecord = errors.New("record is currently active")
)

// Flagged is implemented by models that participate in single-default
// enforcement. ScopeColumn returns "" for globally scoped entities.
type Flagged interface {
	FlagColumn() string
	ScopeColumn() string
}

// SetDefault flags one record in a scope and clears every other record's flag
// in the same transaction, so two concurrent calls cannot leave the scope with
// zero or two defaults.
func SetDefault(db *gorm.DB, model Flagged, scopeVal interface{}, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		clear := tx.Model(model).Where("id <> ?", id)
		if col := model.ScopeColumn(); col != "" {
			clear = clear.Where(col+" = ?", scopeVal)
		}
		if err := clear.Update(model.FlagColumn(), false).Error; err != nil {
			return err
		}

		set := tx.Model(model).Where("id = ?", id)
		if col := model.ScopeColumn(); col != "" {
			set = set.Where(col+" = ?", scopeVal)
		}
		result := set.Update(model.FlagColumn(), true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// FirstInScope reports whether the scope currently holds no records, in which
// case a newly created record must be flagged default regardless of input.
func FirstInScope(db *gorm.DB, model Flagged, scopeVal interface{}) (bool, error) {
	query := db.Model(model)
	if col := model.ScopeColumn(); col != "" {
		query = query.Where(col+" = ?", scopeVal)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// DeleteInactive removes the record only when it does not hold the flag. The
// guard lives inside the DELETE itself, so a concurrent SetDefault cannot slip
// between a check and the delete and leave the scope without a flagged record.
func DeleteInactive(db *gorm.DB, model Flagged, id uuid.UUID) error {
	result := db.Where("id = ?", id).
		Where(model.FlagColumn()+" = ?", false).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// nothing deleted: the row is either flagged or gone
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrActiveRecord
	}
	return ErrNotFound
}
