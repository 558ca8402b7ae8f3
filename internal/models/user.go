package models

import (
	"time"

	"gorm.io/gorm"
)

// KYCStatus is the identity-verification state of a user.
type KYCStatus string

const (
	KYCNotSubmitted KYCStatus = "NOT_SUBMITTED"
	KYCPending      KYCStatus = "PENDING"
	KYCApproved     KYCStatus = "APPROVED"
	KYCRejected     KYCStatus = "REJECTED"
)

// User represents a customer (or staff member) of the rental service.
type User struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	FirstName string `json:"first_name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Email     string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Phone     string `json:"phone" gorm:"type:varchar(16)" validate:"omitempty,min=8,max=16"`
	Address   string `json:"address" validate:"omitempty,max=500"`
	IsAdmin   bool   `json:"is_admin" gorm:"default:false"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	// KYC documents are stored as document-store URLs.
	AadhaarFront string `json:"aadhaar_front,omitempty"`
	AadhaarBack  string `json:"aadhaar_back,omitempty"`
	LicenseFront string `json:"license_front,omitempty"`
	LicenseBack  string `json:"license_back,omitempty"`

	KYCStatus          KYCStatus  `json:"kyc_status" gorm:"type:varchar(20);default:'NOT_SUBMITTED'"`
	KYCApprovedBy      string     `json:"kyc_approved_by,omitempty" gorm:"type:varchar(36)"`
	KYCApprovedAt      *time.Time `json:"kyc_approved_at,omitempty"`
	KYCRejectionReason string     `json:"kyc_rejection_reason,omitempty"`

	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// FullName returns the display name used on payment payloads and emails.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
