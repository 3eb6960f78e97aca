package storage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ObjectStore is the object-storage collaborator the persistence gateway
// depends on. Uploads are upserts: writing an existing path overwrites it.
type ObjectStore interface {
	Upload(bucket, objectPath string, data []byte, contentType string) (string, error)
	PublicURL(bucket, objectPath string) string
}

// DiskStore keeps objects on the local filesystem and serves them over the
// /storage/ route.
type DiskStore struct {
	Root    string
	BaseURL string // e.g. "" for relative URLs or "http://localhost:8080"
}

// NewDiskStore creates the store root if it does not exist.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStore{Root: root, BaseURL: baseURL}, nil
}

// Upload writes the object and returns its public URL. Existing objects at
// the same path are overwritten.
func (s *DiskStore) Upload(bucket, objectPath string, data []byte, contentType string) (string, error) {
	full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s/%s: %w", bucket, objectPath, err)
	}
	return s.PublicURL(bucket, objectPath), nil
}

// PublicURL returns the URL the object is served under.
func (s *DiskStore) PublicURL(bucket, objectPath string) string {
	return s.BaseURL + "/storage/" + bucket + "/" + objectPath
}

// Read returns the stored object bytes.
func (s *DiskStore) Read(bucket, objectPath string) ([]byte, error) {
	full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (s *DiskStore) resolve(bucket, objectPath string) (string, error) {
	if strings.Contains(bucket, "/") || strings.Contains(bucket, "..") || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("invalid object path %q/%q", bucket, objectPath)
	}
	clean := path.Clean("/" + objectPath)
	full := filepath.Join(s.Root, bucket, filepath.FromSlash(clean))
	if !strings.HasPrefix(filepath.Clean(full), filepath.Clean(s.Root)) {
		return "", fmt.Errorf("invalid object path %q/%q", bucket, objectPath)
	}
	return full, nil
}

// ParseObjectURL extracts (bucket, path) from a public storage URL. The
// persistence gateway uses this to overwrite an existing composite in place
// instead of allocating a new object on every re-save.
func ParseObjectURL(raw string) (bucket, objectPath string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid storage URL %q: %w", raw, err)
	}
	p := strings.TrimPrefix(u.Path, "/")
	parts := strings.SplitN(p, "/", 3)
	if len(parts) != 3 || parts[0] != "storage" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("not a storage URL: %q", raw)
	}
	return parts[1], parts[2], nil
}
