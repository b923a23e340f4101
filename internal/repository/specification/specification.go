package specification

import "gorm.io/gorm"

// Specification narrows a query. Repositories apply them in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Scope adapts a plain gorm scope function.
type Scope func(db *gorm.DB) *gorm.DB

func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	return s(db)
}
