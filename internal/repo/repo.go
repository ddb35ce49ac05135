package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExist = errors.New("user already exist")
	ErrSlugTaken        = errors.New("slug already taken")
	ErrCategoryInUse    = errors.New("category still has services")
)

type GormRepo struct {
	DB *gorm.DB
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// uniqueViolation turns a unique index failure into sentinel. The count checks
// before writes catch the common case; this covers two writers racing past them.
func uniqueViolation(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
