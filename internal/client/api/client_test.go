package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/possync/internal/models"
	"github.com/iudanet/possync/pkg/api"
)

func testOperation() *models.SyncOperation {
	return &models.SyncOperation{
		ID:        "op-1",
		Type:      models.OperationCreate,
		Entity:    "invoice",
		Data:      map[string]any{"id": "inv-1", "total": 99.5},
		TenantID:  "shop-42",
		Timestamp: 1234567890,
		LocalID:   "inv-1",
	}
}

func TestExecuteOperation_Success(t *testing.T) {
	var gotMethod, gotPath string
	var gotHeaders http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.MutationResponse{Name: "SRV-001"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.ExecuteOperation(context.Background(), "token-1", testOperation())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/pos/invoices", gotPath)
	assert.Equal(t, "Bearer token-1", gotHeaders.Get("Authorization"))
	assert.Equal(t, "shop-42", gotHeaders.Get(api.HeaderTenantID))
	assert.Equal(t, "true", gotHeaders.Get(api.HeaderOfflineSync))
	assert.Equal(t, "1234567890", gotHeaders.Get(api.HeaderClientTimestamp))
	assert.Equal(t, "inv-1", gotBody["id"])
	assert.Equal(t, "SRV-001", resp.ServerID())
}

func TestExecuteOperation_Methods(t *testing.T) {
	tests := []struct {
		opType models.OperationType
		want   string
	}{
		{models.OperationCreate, http.MethodPost},
		{models.OperationUpdate, http.MethodPut},
		{models.OperationDelete, http.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(string(tt.opType), func(t *testing.T) {
			var gotMethod string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			op := testOperation()
			op.Type = tt.opType

			client := NewClient(server.URL)
			_, err := client.ExecuteOperation(context.Background(), "", op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotMethod)
		})
	}
}

func TestExecuteOperation_UnknownType(t *testing.T) {
	client := NewClient("http://localhost:1")

	op := testOperation()
	op.Type = "upsert"

	_, err := client.ExecuteOperation(context.Background(), "", op)
	assert.Error(t, err)
}

func TestExecuteOperation_NoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "", testOperation())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestExecuteOperation_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.MutationResponse{
			Message: "document was modified",
			Data:    map[string]any{"id": "inv-1", "total": 150.0},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "token", testOperation())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "document was modified", apiErr.Message)
	assert.Equal(t, 150.0, apiErr.ConflictData["total"])
}

func TestExecuteOperation_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "token", testOperation())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.False(t, apiErr.IsConflict())
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	// Empty body falls back to the standard status text.
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.Nil(t, apiErr.ConflictData)
}

func TestExecuteOperation_DetailPreferredOverMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(api.MutationResponse{
			Message: "generic",
			Detail:  "total must be positive",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "token", testOperation())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "total must be positive", apiErr.Message)
}

func TestExecuteOperation_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "token", testOperation())
	require.Error(t, err)

	// Transport failures are plain errors, not *Error.
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestExecuteOperation_UnknownEntityFallbackPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	op := testOperation()
	op.Entity = "warehouse"

	client := NewClient(server.URL)
	_, err := client.ExecuteOperation(context.Background(), "", op)
	require.NoError(t, err)
	assert.Equal(t, "/warehouse", gotPath)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestPing_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.Error(t, client.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	assert.Error(t, client.Ping(context.Background()))
}
