package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
)

const (
	defaultServiceURL = "http://localhost:8000"
	defaultModel      = "hog"
)

// Client is a Recognizer backed by the face service HTTP API.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a face service client from the recognition config.
func NewClient(cfg config.RecognitionConfig) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	httpClient := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  httpClient,
	}
}

// Model returns the detection model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// detectResponse represents the response of /faces/detect
type detectResponse struct {
	FacesCount int      `json:"faces_count"`
	Boxes      [][4]int `json:"boxes"`
}

// encodeResponse represents the response of /faces/encode
type encodeResponse struct {
	Dim        int         `json:"dim"`
	Embeddings [][]float32 `json:"embeddings"`
}

// postMultipartImage posts the image as the "file" part together with extra form fields.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte, fields map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectFaces returns the face boxes found in the image.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]Box, error) {
	body, err := c.postMultipartImage(ctx, "/faces/detect", imageData, map[string]string{"model": c.model})
	if err != nil {
		return nil, err
	}

	var detResp detectResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return fromWire(detResp.Boxes), nil
}

// EncodeFaces returns one embedding per box.
func (c *Client) EncodeFaces(ctx context.Context, imageData []byte, boxes []Box) ([][]float32, error) {
	if len(boxes) == 0 {
		return nil, nil
	}

	boxesJSON, err := json.Marshal(toWire(boxes))
	if err != nil {
		return nil, fmt.Errorf("failed to encode boxes: %w", err)
	}

	body, err := c.postMultipartImage(ctx, "/faces/encode", imageData, map[string]string{
		"model": c.model,
		"boxes": string(boxesJSON),
	})
	if err != nil {
		return nil, err
	}

	var encResp encodeResponse
	if err := json.Unmarshal(body, &encResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(encResp.Embeddings) != len(boxes) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(boxes), len(encResp.Embeddings))
	}
	for i, emb := range encResp.Embeddings {
		if len(emb) == 0 {
			return nil, fmt.Errorf("empty embedding returned for face %d", i)
		}
	}

	return encResp.Embeddings, nil
}

// Compile-time interface check
var _ Recognizer = (*Client)(nil)
