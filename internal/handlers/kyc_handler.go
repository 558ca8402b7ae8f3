package handlers

import (
	"errors"
	"io"
	"log"

	"gorent/internal/middleware"
	"gorent/internal/services"

	"github.com/gofiber/fiber/v2"
)

// KYCHandler handles HTTP requests for identity verification.
type KYCHandler struct {
	kycService *services.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycService *services.KYCService) *KYCHandler {
	return &KYCHandler{
		kycService: kycService,
	}
}

// RegisterRoutes registers the KYC routes with the Fiber app.
func (h *KYCHandler) RegisterRoutes(router fiber.Router) {
	kycRoutes := router.Group("/kyc")
	kycRoutes.Post("/upload", h.HandleUpload)
	kycRoutes.Get("/status", h.HandleStatus)
}

// HandleUpload accepts multipart document uploads. Each form file field is a
// document type: aadhaar_front, aadhaar_back, license_front, license_back.
func (h *KYCHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Request must be multipart/form-data",
			"error":   err.Error(),
		})
	}

	userID := middleware.UserID(c)
	uploaded := make(map[string]string)

	for field, files := range form.File {
		if len(files) == 0 {
			continue
		}
		file := files[0]
		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not read uploaded file",
				"error":   err.Error(),
			})
		}
		content, err := io.ReadAll(io.LimitReader(src, services.MaxDocumentSize+1))
		src.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not read uploaded file",
				"error":   err.Error(),
			})
		}

		url, err := h.kycService.UploadDocument(userID, field, file.Filename, content)
		if err != nil {
			log.Printf("Error uploading KYC document %s for user %s: %v", field, userID, err)
			if errors.Is(err, services.ErrInvalidDocumentType) || errors.Is(err, services.ErrInvalidDocument) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Upload rejected",
					"error":   err.Error(),
					"field":   field,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not store document",
				"error":   err.Error(),
			})
		}
		uploaded[field] = url
	}

	if len(uploaded) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No documents supplied",
		})
	}

	status, _, err := h.kycService.Status(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not read KYC status",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":    "Documents uploaded",
		"documents":  uploaded,
		"kyc_status": status,
	})
}

// HandleStatus returns the user's verification state.
func (h *KYCHandler) HandleStatus(c *fiber.Ctx) error {
	status, reason, err := h.kycService.Status(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not read KYC status",
			"error":   err.Error(),
		})
	}
	resp := fiber.Map{"kyc_status": status}
	if reason != "" {
		resp["rejection_reason"] = reason
	}
	return c.JSON(resp)
}
