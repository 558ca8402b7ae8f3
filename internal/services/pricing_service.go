package services

import (
	"errors"
	"math"

	"gorent/internal/models"
)

// Pricing errors.
var (
	ErrInvalidProtectionLevel = errors.New("protection level must be one of 0, 277 or 477")
	ErrInvalidDepositType     = errors.New("deposit type must be one of bike_rc, laptop, cheque or cash")
)

// Quote is the server-side pricing breakdown for a rental. The payable total
// is never taken from client input.
type Quote struct {
	Hours         int     `json:"hours"`
	BaseRental    float64 `json:"base_rental"`
	ProtectionFee float64 `json:"protection_fee"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	Deposit       float64 `json:"deposit"` // Refundable, not included in Total
}

// PricingService computes payable amounts from fleet data.
type PricingService struct{}

// NewPricingService creates a new PricingService.
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote computes the pricing breakdown for renting a car for the given number
// of hours with the selected protection level:
//
//	total = base rental + protection fee - discount, clamped at zero
//
// The refundable deposit is reported separately and never added to the total.
func (s *PricingService) Quote(car *models.Car, hours int, protectionLevel int, discount float64) (*Quote, error) {
	if !models.ProtectionLevels[protectionLevel] {
		return nil, ErrInvalidProtectionLevel
	}
	if hours < 1 {
		hours = 1
	}
	if discount < 0 {
		discount = 0
	}

	baseRental := round2(car.HourlyPrice * float64(hours))
	protectionFee := float64(protectionLevel)

	subtotal := baseRental + protectionFee
	if discount > subtotal {
		discount = subtotal
	}
	total := round2(subtotal - discount)
	if total < 0 {
		total = 0
	}

	return &Quote{
		Hours:         hours,
		BaseRental:    baseRental,
		ProtectionFee: protectionFee,
		Discount:      round2(discount),
		Total:         total,
		Deposit:       round2(car.Deposit),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
