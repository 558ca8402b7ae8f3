package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gorent/internal/models"
	"gorent/internal/repositories"
	"gorent/pkg/docstore"
)

// KYC errors.
var (
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrInvalidDocument     = errors.New("document must be a jpg, jpeg, png or pdf up to 10 MB")
	ErrKYCNotReviewable    = errors.New("KYC submission is not awaiting review")
)

// MaxDocumentSize is the KYC upload cap.
const MaxDocumentSize = 10 << 20 // 10 MB

var allowedDocumentExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true}

// DocumentTypes accepted by the KYC upload endpoint.
var documentTypes = map[string]bool{
	"aadhaar_front": true,
	"aadhaar_back":  true,
	"license_front": true,
	"license_back":  true,
}

// DecisionMailer sends the KYC outcome email. Satisfied by mailer.Mailer.
type DecisionMailer interface {
	SendKYCDecision(to, userName string, approved bool, reason string) error
}

// KYCService handles document upload and the verification workflow.
type KYCService struct {
	userRepo  repositories.UserRepository
	store     docstore.Store
	publisher EventPublisher
	mail      DecisionMailer
}

// NewKYCService creates a new KYCService. publisher and mail may be nil.
func NewKYCService(userRepo repositories.UserRepository, store docstore.Store, publisher EventPublisher, mail DecisionMailer) *KYCService {
	return &KYCService{
		userRepo:  userRepo,
		store:     store,
		publisher: publisher,
		mail:      mail,
	}
}

// UploadDocument validates and stores one KYC document. Once both Aadhaar
// sides are present the submission moves NOT_SUBMITTED -> PENDING; a rejected
// user re-uploading also returns to PENDING for another review.
func (s *KYCService) UploadDocument(userID, documentType, filename string, content []byte) (string, error) {
	if !documentTypes[documentType] {
		return "", ErrInvalidDocumentType
	}
	if filename == "" || len(content) == 0 || len(content) > MaxDocumentSize {
		return "", ErrInvalidDocument
	}
	if !allowedDocumentExts[strings.ToLower(filepath.Ext(filename))] {
		return "", ErrInvalidDocument
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}

	url, err := s.store.Save(userID, documentType, filename, content)
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	switch documentType {
	case "aadhaar_front":
		user.AadhaarFront = url
	case "aadhaar_back":
		user.AadhaarBack = url
	case "license_front":
		user.LicenseFront = url
	case "license_back":
		user.LicenseBack = url
	}

	if user.AadhaarFront != "" && user.AadhaarBack != "" &&
		(user.KYCStatus == models.KYCNotSubmitted || user.KYCStatus == models.KYCRejected) {
		user.KYCStatus = models.KYCPending
		user.KYCRejectionReason = ""
		if s.publisher != nil {
			event := map[string]interface{}{"user_id": user.ID, "user_name": user.FullName()}
			if err := s.publisher.PublishEvent("kyc.submitted", event); err != nil {
				log.Printf("Warning: failed to publish KYC submitted event for user %s: %v", user.ID, err)
			}
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// Status returns the user's verification state and any rejection reason.
func (s *KYCService) Status(userID string) (models.KYCStatus, string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", "", err
	}
	return user.KYCStatus, user.KYCRejectionReason, nil
}

// Review is the admin decision on a pending submission.
func (s *KYCService) Review(adminID, userID string, approve bool, reason string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.KYCStatus != models.KYCPending {
		return ErrKYCNotReviewable
	}

	if approve {
		now := time.Now()
		user.KYCStatus = models.KYCApproved
		user.KYCApprovedBy = adminID
		user.KYCApprovedAt = &now
		user.KYCRejectionReason = ""
	} else {
		user.KYCStatus = models.KYCRejected
		user.KYCRejectionReason = reason
	}
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if s.mail != nil {
		if err := s.mail.SendKYCDecision(user.Email, user.FullName(), approve, reason); err != nil {
			log.Printf("Warning: failed to send KYC decision email to %s: %v", user.Email, err)
		}
	}
	return nil
}
