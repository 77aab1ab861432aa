package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/netx"
)

// PresetUploader posts files as multipart forms carrying an upload preset
// and expects {"secure_url": "..."} back.
type PresetUploader struct {
	endpoint   string
	preset     string
	httpClient *http.Client
}

// NewPresetUploader returns an uploader for endpoint. A nil httpClient
// means http.DefaultClient.
func NewPresetUploader(endpoint, preset string, httpClient *http.Client) *PresetUploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PresetUploader{endpoint: endpoint, preset: preset, httpClient: httpClient}
}

type presetResponse struct {
	SecureURL string `json:"secure_url"`
}

type presetErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *PresetUploader) Upload(ctx context.Context, obj Object) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(u.writeForm(mw, obj))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", obj.Key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return "", &RejectedError{StatusCode: resp.StatusCode, Message: presetMessage(body)}
	}

	var out presetResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", &RejectedError{StatusCode: resp.StatusCode, Message: "response carries no secure_url"}
	}
	return out.SecureURL, nil
}

func (u *PresetUploader) writeForm(mw *multipart.Writer, obj Object) error {
	if err := mw.WriteField("upload_preset", u.preset); err != nil {
		return err
	}
	publicID := strings.TrimSuffix(obj.Key, extOf(obj.Key))
	if err := mw.WriteField("public_id", publicID); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", obj.Filename)
	if err != nil {
		return err
	}
	body := netx.NewProgressReader(bytes.NewReader(obj.Data), int64(len(obj.Data)), obj.Progress)
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

// presetMessage extracts {"error":{"message":...}} or falls back to the raw body.
func presetMessage(body []byte) string {
	var e presetErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func extOf(key string) string {
	i := strings.LastIndex(key, ".")
	if i < 0 || strings.Contains(key[i:], "/") {
		return ""
	}
	return key[i:]
}
