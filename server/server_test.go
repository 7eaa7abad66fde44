package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	s, err := NewServer("localhost:0", false, "")
	require.NoError(t, err)
	return s
}

func TestNewServer_AddressNormalization(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected string
		wantErr  bool
	}{
		{"host and port", "localhost:12000", "localhost:12000", false},
		{"bare port", "12000", ":12000", false},
		{"port only with colon", ":13000", ":13000", false},
		{"garbage", "not-a-port", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.addr, false, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.addr)
		})
	}
}

// TestSendBanner tests the banner/root endpoint handler directly
func TestSendBanner(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	sendBanner(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "ok", data["status"])
}

// TestHandleJSONRPCValidation tests the JSON-RPC handler directly
func TestHandleJSONRPCValidation(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		body         string
		expectStatus int
		expectCode   float64
		expectData   string
	}{
		{
			name:         "Non-POST method",
			method:       "GET",
			body:         "",
			expectStatus: 405,
		},
		{
			name:         "Invalid JSON",
			method:       "POST",
			body:         `{invalid json}`,
			expectStatus: 200,
			expectCode:   float64(ErrCodeParseError),
			expectData:   errMsgParseError,
		},
		{
			name:         "Wrong jsonrpc version",
			method:       "POST",
			body:         `{"jsonrpc":"1.0","method":"workspaces_list","id":1}`,
			expectStatus: 200,
			expectCode:   float64(ErrCodeInvalidRequest),
			expectData:   errMsgInvalidJSONRPC,
		},
		{
			name:         "Missing id",
			method:       "POST",
			body:         `{"jsonrpc":"2.0","method":"workspaces_list"}`,
			expectStatus: 200,
			expectCode:   float64(ErrCodeInvalidRequest),
			expectData:   errMsgIDRequired,
		},
		{
			name:         "Empty method",
			method:       "POST",
			body:         `{"jsonrpc":"2.0","method":"","id":1}`,
			expectStatus: 200,
			expectCode:   float64(ErrCodeServerError),
			expectData:   errMsgMethodRequired,
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/rpc", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			s.handleJSONRPC(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			assert.Equal(t, tt.expectStatus, resp.StatusCode)
			if resp.StatusCode == 405 {
				return
			}

			var jsonResp JSONRPCResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))

			assert.Equal(t, "2.0", jsonResp.JSONRPC)
			require.NotNil(t, jsonResp.Error, "Expected error in response")

			errorMap, ok := jsonResp.Error.(map[string]interface{})
			require.True(t, ok, "Expected error to be map, got %T", jsonResp.Error)

			assert.Equal(t, tt.expectCode, errorMap["code"])
			assert.Equal(t, tt.expectData, errorMap["data"])
		})
	}
}

// TestMethodNotFound tests that unknown methods return method not found error
func TestMethodNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"unknown_method","id":1}`))
	w := httptest.NewRecorder()

	s.handleJSONRPC(w, req)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&jsonResp))
	require.NotNil(t, jsonResp.Error)

	errorMap, ok := jsonResp.Error.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(ErrCodeMethodNotFound), errorMap["code"])
}

// TestShutdownMethod tests that server.shutdown acknowledges before stopping
func TestShutdownMethod(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/rpc", strings.NewReader(`{"jsonrpc":"2.0","method":"server.shutdown","id":1}`))
	w := httptest.NewRecorder()

	s.handleJSONRPC(w, req)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&jsonResp))

	assert.Nil(t, jsonResp.Error)
	resultMap, ok := jsonResp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", resultMap["status"])
}

// TestSendJSONRPCResponse tests the response helper function
func TestSendJSONRPCResponse(t *testing.T) {
	w := httptest.NewRecorder()
	testData := map[string]string{"test": "data"}

	sendJSONRPCResponse(w, 123, testData)

	resp := w.Result()
	defer resp.Body.Close()

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))

	assert.Equal(t, "2.0", jsonResp.JSONRPC)
	assert.Equal(t, float64(123), jsonResp.ID)

	resultMap, ok := jsonResp.Result.(map[string]interface{})
	require.True(t, ok, "Expected result to be map, got %T", jsonResp.Result)
	assert.Equal(t, "data", resultMap["test"])
}

// TestSendJSONRPCError tests the error response helper function
func TestSendJSONRPCError(t *testing.T) {
	w := httptest.NewRecorder()

	sendJSONRPCError(w, 456, ErrCodeMethodNotFound, "Method not found", "Test method")

	resp := w.Result()
	defer resp.Body.Close()

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))

	assert.Equal(t, "2.0", jsonResp.JSONRPC)
	assert.Equal(t, float64(456), jsonResp.ID)

	errorMap, ok := jsonResp.Error.(map[string]interface{})
	require.True(t, ok, "Expected error to be map, got %T", jsonResp.Error)

	assert.Equal(t, float64(ErrCodeMethodNotFound), errorMap["code"])
	assert.Equal(t, "Method not found", errorMap["message"])
	assert.Equal(t, "Test method", errorMap["data"])
}

// TestCORSMiddleware tests the CORS middleware functionality
func TestCORSMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test"))
	})

	corsHandler := corsMiddleware(testHandler)

	tests := []struct {
		name   string
		method string
	}{
		{"GET request", "GET"},
		{"POST request", "POST"},
		{"OPTIONS request", "OPTIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			w := httptest.NewRecorder()

			corsHandler.ServeHTTP(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))

			if tt.method == "OPTIONS" {
				assert.Equal(t, 200, resp.StatusCode)
			}
		})
	}
}

// TestRequireAuth tests the Bearer token middleware
func TestRequireAuth(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no token configured passes through", func(t *testing.T) {
		s, err := NewServer("localhost:0", false, "")
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/rpc", nil)
		w := httptest.NewRecorder()

		s.requireAuth(inner).ServeHTTP(w, req)
		assert.Equal(t, 200, w.Result().StatusCode)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		s, err := NewServer("localhost:0", false, "secret-token")
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/rpc", nil)
		w := httptest.NewRecorder()

		s.requireAuth(inner).ServeHTTP(w, req)
		assert.Equal(t, 401, w.Result().StatusCode)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		s, err := NewServer("localhost:0", false, "secret-token")
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/rpc", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()

		s.requireAuth(inner).ServeHTTP(w, req)
		assert.Equal(t, 401, w.Result().StatusCode)
	})

	t.Run("correct token accepted", func(t *testing.T) {
		s, err := NewServer("localhost:0", false, "secret-token")
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/rpc", nil)
		req.Header.Set("Authorization", "Bearer secret-token")
		w := httptest.NewRecorder()

		s.requireAuth(inner).ServeHTTP(w, req)
		assert.Equal(t, 200, w.Result().StatusCode)
	})
}
