// Package chatclient talks to the /chat and /upload endpoints of the document chat backend.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ragchat/widget/internal/models"
)

const (
	chatPath   = "/chat"
	uploadPath = "/upload"

	// UploadField is the multipart field every uploaded file is sent under.
	UploadField = "files"

	maxErrorBody = 1 << 20
)

// Client is an HTTP client for the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the backend at baseURL (e.g. "http://localhost:8089").
// Deadlines are taken from the context of each call.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response json.RawMessage `json:"response"`
	Sources  []string        `json:"sources,omitempty"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Chat posts one user message and returns the bot reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(ctx, "chat", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", readAPIError(ctx, "chat", resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", classify(ctx, "chat", fmt.Errorf("decoding response: %w", err))
	}
	return detailText(out.Response), nil
}

// Upload sends all documents as a single multipart request.
func (c *Client) Upload(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, doc := range docs {
		if err := writePart(writer, doc); err != nil {
			return fmt.Errorf("encoding %s: %w", doc.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, body)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, "upload", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return readAPIError(ctx, "upload", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writePart(w *multipart.Writer, doc models.Document) error {
	src, err := doc.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadField, escapeQuotes(doc.Name)))
	contentType := doc.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// readAPIError turns a non-2xx response into an APIError. A body that is not
// JSON with a detail field counts as a transport failure.
func readAPIError(ctx context.Context, op string, resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return classify(ctx, op, fmt.Errorf("reading error body: %w", err))
	}

	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("status %d with unparsable body: %w", resp.StatusCode, err)}
	}
	return &APIError{Status: resp.StatusCode, Detail: detailText(er.Detail)}
}

// detailText renders a detail or response value. Absent and null values render
// as "undefined"; FastAPI style validation errors send a list, which is passed
// through as compact JSON.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "undefined"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return &TransportError{Op: op, Err: err}
}

// WithTimeout derives a context bounded by d. A non-positive d leaves ctx unbounded.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
