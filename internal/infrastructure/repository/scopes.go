package repository

import (
	"errors"
	"time"

	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Paginate applies offset and limit for the requested page. A nil params
// selects the first page.
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			params = pagination.DefaultPagination()
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// CreatedBetween restricts rows to created_at in [start, end). Either bound
// may be nil.
func CreatedBetween(start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("created_at >= ?", *start)
		}
		if end != nil {
			db = db.Where("created_at < ?", *end)
		}
		return db
	}
}

// translate maps driver errors onto the repository sentinels. The connection
// must be opened with TranslateError enabled.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainRepo.ErrDuplicate
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainRepo.ErrNotFound
	}
	return err
}

// saveExisting updates every column of a record that must already exist.
func saveExisting(db *gorm.DB, model interface{}) error {
	result := db.Select("*").Omit(clause.Associations, "created_at").Updates(model)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}
