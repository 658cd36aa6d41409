package specification

import (
	"gorm.io/gorm"
)

type ByOwnerRef struct {
	OwnerRef string
}

func (s ByOwnerRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_ref = ?", s.OwnerRef)
}
