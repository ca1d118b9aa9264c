package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iudanet/posauth/pkg/api"
)

// Error ответ сервера с не-2xx статусом
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error (%d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsCode проверяет, что err - ответ сервера с кодом code
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client представляет HTTP клиент для auth-service и auth-webhook
type Client struct {
	httpClient *http.Client
	issuerURL  string
	webhookURL string
}

// NewClient создает новый API клиент
func NewClient(issuerURL, webhookURL string) *Client {
	return &Client{
		issuerURL:  strings.TrimRight(issuerURL, "/"),
		webhookURL: strings.TrimRight(webhookURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, c.issuerURL+"/register", req, &resp, decodeErrorResponse); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, c.issuerURL+"/login", req, &resp, decodeErrorResponse); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Verify отправляет токен в webhook так же, как это делает sync backend
func (c *Client) Verify(ctx context.Context, accessToken string) (*api.AuthSuccessResponse, error) {
	var resp api.AuthSuccessResponse
	err := c.doRequest(ctx, c.webhookURL+"/auth", api.AuthRequest{Token: accessToken}, &resp, decodeFailureResponse)
	if err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	return &resp, nil
}

type errorDecoder func(status int, body []byte) error

func decodeErrorResponse(status int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Code == "" {
		return nil
	}
	return &Error{StatusCode: status, Code: errResp.Code, Message: errResp.Message}
}

func decodeFailureResponse(status int, body []byte) error {
	var failResp api.AuthFailureResponse
	if err := json.Unmarshal(body, &failResp); err != nil || failResp.Reason == "" {
		return nil
	}
	return &Error{StatusCode: status, Code: failResp.Reason, Message: failResp.ClientInfo}
}

// doRequest выполняет POST запрос с JSON телом
func (c *Client) doRequest(ctx context.Context, url string, body, result any, decodeErr errorDecoder) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if apiErr := decodeErr(resp.StatusCode, respBody); apiErr != nil {
			return apiErr
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
