package integration

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/internal/event"
)

// FileClient stores pictures on the file service.
type FileClient struct {
	baseClient
}

var _ event.FileStorage = (*FileClient)(nil)

func NewFileClient(baseURL string, timeout time.Duration, log *zap.Logger) *FileClient {
	return &FileClient{baseClient: newBaseClient("file-service", baseURL, timeout, log)}
}

type fileNameResponse struct {
	FileName string `json:"fileName"`
}

type fileRemoveResponse struct {
	Removed bool `json:"removed"`
}

// Upload posts the picture as multipart "file" to /file/upload/<bucket>
// and returns the stored file name. The service answers 201.
func (c *FileClient) Upload(ctx context.Context, picture *event.Picture, bucket string) (string, error) {
	if picture == nil {
		return "", fmt.Errorf("no picture to upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary("expo-" + uuid.NewString()); err != nil {
		return "", fmt.Errorf("failed to set boundary: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, picture.Filename))
	contentType := picture.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(picture.Data); err != nil {
		return "", fmt.Errorf("failed to write picture: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/upload/"+url.PathEscape(bucket), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out fileNameResponse
	if err := c.do(req, &out, http.StatusCreated); err != nil {
		return "", err
	}
	if out.FileName == "" {
		return "", fmt.Errorf("file-service returned an empty file name")
	}
	return out.FileName, nil
}

// Remove deletes fileName from bucket. A response without removed=true is an error.
func (c *FileClient) Remove(ctx context.Context, bucket, fileName string) error {
	path := "/file/" + url.PathEscape(bucket) + "/" + url.PathEscape(fileName)

	var out fileRemoveResponse
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return err
	}
	if !out.Removed {
		return fmt.Errorf("file-service did not remove %s/%s", bucket, fileName)
	}
	return nil
}
