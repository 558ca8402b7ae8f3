package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded KYC documents and returns a URL for each.
type Store interface {
	Save(userID, documentType, filename string, content []byte) (string, error)
}

// LocalStore writes documents under a base directory on local disk.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore creates the base directory if needed and returns a LocalStore.
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the document to disk under a random name, keeping the original
// extension, and returns its serving URL.
func (s *LocalStore) Save(userID, documentType, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s_%s_%s%s", userID, documentType, uuid.New().String()[:8], ext)

	dir := filepath.Join(s.baseDir, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create user document directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o640); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, userID, name), nil
}
