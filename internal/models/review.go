package models

import "gorm.io/gorm"

// Review is customer feedback for a completed rental.
type Review struct {
	ID      string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID  string `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	CarID   string `json:"car_id" gorm:"index;type:varchar(36)" validate:"required"`
	OrderID string `json:"order_id" gorm:"uniqueIndex;type:varchar(36)" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
	gorm.Model
}
