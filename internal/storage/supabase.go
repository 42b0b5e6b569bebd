package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Bucket holding uploaded CVs and cover letters. Private: reads go through
// signed URLs only.
const Bucket = "uploads"

const (
	maxFileSize = 10 << 20 // 10MB
)

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var (
	ErrDisabled        = errors.New("object storage not configured")
	ErrFileTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrUnsupportedType = errors.New("only PDF and Word documents are accepted")
)

// Client is a thin wrapper over the Supabase Storage REST API. File bytes are
// streamed through; only opaque object paths are handed back to callers.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether storage credentials are present. When false the
// upload endpoints answer 503 and submissions fall back to file-less intake.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.serviceKey != ""
}

// EnsureBucket creates the uploads bucket if it does not exist yet. Failures
// are logged, not fatal: the service runs in storage-degraded mode instead.
func (c *Client) EnsureBucket(ctx context.Context) {
	if !c.Enabled() {
		return
	}

	body, _ := json.Marshal(map[string]interface{}{
		"id":     Bucket,
		"name":   Bucket,
		"public": false,
		"allowed_mime_types": []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		"file_size_limit": maxFileSize,
	})

	resp, err := c.do(ctx, http.MethodPost, "/storage/v1/bucket", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Println("⚠️ Could not ensure storage bucket:", err)
		return
	}
	defer resp.Body.Close()

	// 409 means the bucket already exists, which is the normal case.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		log.Printf("⚠️ Storage bucket setup returned %d", resp.StatusCode)
	}
}

// Upload stores one object and returns its path within the bucket. The path
// embeds the owner id so objects stay partitioned per user.
func (c *Client) Upload(ctx context.Context, userID, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if size > maxFileSize {
		return "", ErrFileTooLarge
	}
	if !allowedMimeTypes[contentType] {
		return "", ErrUnsupportedType
	}

	path := fmt.Sprintf("%s/%d-%s", userID, time.Now().UnixMilli(), filename)

	resp, err := c.do(ctx, http.MethodPost, "/storage/v1/object/"+Bucket+"/"+path, contentType, r)
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload object: storage returned %d", resp.StatusCode)
	}
	return path, nil
}

// SignedURL mints a time-limited download link for an object path.
func (c *Client) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, _ := json.Marshal(map[string]interface{}{
		"expiresIn": int(expiresIn.Seconds()),
	})

	resp, err := c.do(ctx, http.MethodPost, "/storage/v1/object/sign/"+Bucket+"/"+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sign url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign url: storage returned %d", resp.StatusCode)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sign url: %w", err)
	}
	return c.baseURL + "/storage/v1" + out.SignedURL, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	return c.http.Do(req)
}
