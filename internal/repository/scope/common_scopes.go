package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OrderByEnrolledDesc(db *gorm.DB) *gorm.DB {
	return db.Order("enrollments.enrolled_at DESC")
}
