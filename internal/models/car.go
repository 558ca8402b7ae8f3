package models

import "gorm.io/gorm"

// Car represents a rentable vehicle in the fleet.
type Car struct {
	ID           string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Brand        string  `json:"brand" validate:"required,min=2,max=100"`
	CarModel     string  `json:"car_model" validate:"required,min=1,max=100"`
	Description  string  `json:"description" validate:"omitempty,max=500"`
	Registration string  `json:"registration_number" gorm:"uniqueIndex;type:varchar(20)" validate:"omitempty,max=20"`
	HourlyPrice  float64 `json:"hourly_price" validate:"required,gt=0"`
	DamagePrice  float64 `json:"damage_price" validate:"gte=0"` // Maximum damage liability reference
	Deposit      float64 `json:"deposit" validate:"gte=0"`      // Refundable, never part of the payable total
	FuelType     string  `json:"fuel_type" validate:"required,oneof=PETROL DIESEL CNG ELECTRIC"`
	Transmission string  `json:"transmission" validate:"required,oneof=MANUAL AUTOMATIC"`
	Seats        int     `json:"seats" validate:"required,gte=2,lte=9"`
	CarType      string  `json:"car_type" validate:"required,oneof=SUV SEDAN HATCHBACK"`
	Location     string  `json:"location" validate:"omitempty,max=200"`
	Active       bool    `json:"active" gorm:"default:true"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
