package engine_test

import (
	"time"

	"gorm.io/gorm"
)

func gormModel(createdAt time.Time) gorm.Model {
	return gorm.Model{CreatedAt: createdAt}
}
