// Package remote talks to the document processing service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// File is a document picked for submission.
type File struct {
	Name string
	Data []byte
}

// Validation mirrors the service's structural check of an upload.
type Validation struct {
	Valid    bool   `json:"valid"`
	NumPages int    `json:"num_pages,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StoreResult is the outcome of a successful store.
type StoreResult struct {
	Identifier string
	URL        string
	Message    string
	Validation *Validation
}

// ConvertResult is the outcome of a successful validate-and-convert.
// Identifier is set only when a converted copy was produced.
type ConvertResult struct {
	Compliant  bool
	Identifier string
	Message    string
}

// Status discriminators of the convert response.
const (
	StatusValid     = "VALID"
	StatusConverted = "CONVERTED"
)

// Client sends documents to the service. It sets no timeout of its own;
// callers bound each call through its context.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient uses a plain http.Client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type storeResponse struct {
	Message          string      `json:"message"`
	FileKey          string      `json:"file_key"`
	FileURL          string      `json:"file_url"`
	ValidationResult *Validation `json:"validation_result"`
}

// Store uploads the raw file bytes as the request body.
func (c *Client) Store(ctx context.Context, f File) (*StoreResult, error) {
	const op = "store"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(f.Data))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/pdf")

	var body storeResponse
	if err := c.do(op, req, &body); err != nil {
		return nil, err
	}

	id := body.FileKey
	if id == "" {
		id = body.FileURL
	}
	if id == "" {
		return nil, &DecodeError{Op: op, Err: errors.New("response carries neither file_key nor file_url")}
	}
	return &StoreResult{
		Identifier: id,
		URL:        body.FileURL,
		Message:    body.Message,
		Validation: body.ValidationResult,
	}, nil
}

type convertResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	ConvertedFileKey string `json:"converted_file_key"`
}

// ValidateAndConvert sends the file as the "file" part of a multipart form.
func (c *Client) ValidateAndConvert(ctx context.Context, f File) (*ConvertResult, error) {
	const op = "convert"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName(f))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("write form file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("close multipart: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", &buf)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var body convertResponse
	if err := c.do(op, req, &body); err != nil {
		return nil, err
	}

	switch {
	case strings.EqualFold(body.Status, StatusValid):
		return &ConvertResult{Compliant: true, Message: body.Message}, nil
	case strings.EqualFold(body.Status, StatusConverted) && body.ConvertedFileKey != "":
		return &ConvertResult{Identifier: body.ConvertedFileKey, Message: body.Message}, nil
	case strings.EqualFold(body.Status, StatusConverted):
		return nil, &DecodeError{Op: op, Err: errors.New("converted response without converted_file_key")}
	case body.Status == "":
		return nil, &DecodeError{Op: op, Err: errors.New("response has no status")}
	default:
		return nil, &DecodeError{Op: op, Err: fmt.Errorf("unknown status %q", body.Status)}
	}
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(op string, req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ResponseError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func fileName(f File) string {
	if f.Name == "" {
		return "document.pdf"
	}
	return f.Name
}
