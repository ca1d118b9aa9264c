package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/posauth/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", "http://localhost:8081")

	assert.Equal(t, "http://localhost:8080", client.issuerURL)
	assert.Equal(t, "http://localhost:8081", client.webhookURL)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Register проверяет успешную регистрацию
func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "pw1", req.Password)
		assert.Equal(t, "cashier", req.Role)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.RegisterResponse{
			Message:  "User alice registered successfully",
			Username: "alice",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "alice",
		Password: "pw1",
		Role:     "cashier",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
}

// TestClient_Register_Error проверяет обработку ошибок при регистрации
func TestClient_Register_Error(t *testing.T) {
	tests := []struct {
		responseBody   any
		name           string
		expectedCode   string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:       "username taken",
			statusCode: http.StatusConflict,
			responseBody: api.ErrorResponse{
				Message: "Username already exists",
				Code:    api.CodeUsernameTaken,
			},
			expectedCode:   api.CodeUsernameTaken,
			expectedErrMsg: "server error (409, username_taken): Username already exists",
		},
		{
			name:       "missing fields",
			statusCode: http.StatusBadRequest,
			responseBody: api.ErrorResponse{
				Message: "missing required field: role",
				Code:    api.CodeMissingFields,
			},
			expectedCode:   api.CodeMissingFields,
			expectedErrMsg: "server error (400, missing_fields)",
		},
		{
			name:           "plain text error",
			statusCode:     http.StatusBadGateway,
			responseBody:   "Bad Gateway",
			expectedErrMsg: "request failed with status 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if errResp, ok := tt.responseBody.(api.ErrorResponse); ok {
					_ = json.NewEncoder(w).Encode(errResp)
				} else {
					_, _ = w.Write([]byte(tt.responseBody.(string)))
				}
			}))
			defer server.Close()

			client := NewClient(server.URL, "")
			resp, err := client.Register(context.Background(), api.RegisterRequest{Username: "alice"})

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)
			if tt.expectedCode != "" {
				assert.True(t, IsCode(err, tt.expectedCode))
			}
		})
	}
}

// TestClient_Login проверяет успешный логин
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "token-abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "pw1"})

	require.NoError(t, err)
	assert.Equal(t, "token-abc", resp.AccessToken)
}

// TestClient_Login_InvalidCredentials проверяет ответ 401
func TestClient_Login_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid username or password",
			Code:    api.CodeInvalidCredentials,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "bad"})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsCode(err, api.CodeInvalidCredentials))
}

// TestClient_Verify проверяет запрос к webhook
func TestClient_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth", r.URL.Path)

		var req api.AuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "token-abc", req.Token)

		_ = json.NewEncoder(w).Encode(api.AuthSuccessResponse{
			Authenticated:     true,
			UserID:            "user-1",
			ExpirationSeconds: 28800,
			IdentityServiceMetadata: api.IdentityMetadata{
				UserRole: "manager",
			},
		})
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	resp, err := client.Verify(context.Background(), "token-abc")

	require.NoError(t, err)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, "manager", resp.IdentityServiceMetadata.UserRole)
}

// TestClient_Verify_Rejected проверяет разбор тела отказа webhook
func TestClient_Verify_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.AuthFailureResponse{
			ClientInfo: "Token has expired",
			Reason:     api.CodeTokenExpired,
		})
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	resp, err := client.Verify(context.Background(), "old")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsCode(err, api.CodeTokenExpired))
	assert.Contains(t, err.Error(), "Token has expired")
}

// TestClient_ContextCancellation проверяет отмену запроса через контекст
func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	resp, err := client.Login(ctx, api.LoginRequest{Username: "alice", Password: "pw"})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestClient_InvalidJSON проверяет обработку невалидного JSON в ответе
func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("invalid json {{{"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "pw"})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to decode response")
}
