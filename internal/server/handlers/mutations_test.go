package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/possync/internal/server/handlers"
	"github.com/iudanet/possync/internal/server/storage"
	"github.com/iudanet/possync/internal/server/storage/sqlite"
	"github.com/iudanet/possync/pkg/api"
)

func newTestHandler(t *testing.T) (*handlers.MutationHandler, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return handlers.NewMutationHandler(store, logger), store
}

func newMutationRequest(method, path string, body map[string]any, clientTS int64) *http.Request {
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.HeaderTenantID, "tenant-1")
	req.Header.Set(api.HeaderClientTimestamp, strconv.FormatInt(clientTS, 10))

	return req
}

func decodeMutationResponse(t *testing.T, rec *httptest.ResponseRecorder) api.MutationResponse {
	t.Helper()

	var resp api.MutationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestHandle_MissingTenantHeader(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := newMutationRequest(http.MethodPost, "/pos/invoices", map[string]any{"id": "inv-1"}, 100)
	req.Header.Del(api.HeaderTenantID)

	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing tenant header", decodeMutationResponse(t, rec).Detail)
}

func TestHandle_InvalidJSONBody(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/pos/invoices", bytes.NewReader([]byte("{not json")))
	req.Header.Set(api.HeaderTenantID, "tenant-1")

	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decodeMutationResponse(t, rec).Detail)
}

func TestHandle_MissingDocumentID(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "no id field", body: map[string]any{"amount": 100}},
		{name: "empty id", body: map[string]any{"id": ""}},
		{name: "non-string id", body: map[string]any{"id": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Handle(rec, newMutationRequest(http.MethodPost, "/pos/invoices", tt.body, 100))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPatch, "/pos/invoices", map[string]any{"id": "inv-1"}, 100))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCreate_Success(t *testing.T) {
	handler, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/pos/invoices",
		map[string]any{"id": "inv-1", "amount": 250.0}, 100))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "inv-1", decodeMutationResponse(t, rec).Name)

	doc, err := store.GetDocument(context.Background(), "tenant-1", "invoice", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), doc.ClientTimestamp)
	assert.Equal(t, int64(1), doc.Version)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(doc.Payload, &payload))
	assert.Equal(t, 250.0, payload["amount"])
}

func TestCreate_ExistingConflicts(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/customers",
		map[string]any{"id": "cust-1", "name": "original"}, 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/customers",
		map[string]any{"id": "cust-1", "name": "duplicate"}, 200))

	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeMutationResponse(t, rec)
	assert.Equal(t, "document modified concurrently", resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "original", resp.Data["name"])
}

func TestCreate_ExistingForcedOverwrite(t *testing.T) {
	handler, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/customers",
		map[string]any{"id": "cust-1", "name": "original"}, 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/customers",
		map[string]any{"id": "cust-1", "name": "forced", "_forceOverwrite": true}, 200))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1", decodeMutationResponse(t, rec).Name)

	doc, err := store.GetDocument(context.Background(), "tenant-1", "customer", "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(doc.Payload, &payload))
	assert.Equal(t, "forced", payload["name"])
}

func TestUpdate_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPut, "/items",
		map[string]any{"id": "item-missing"}, 100))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "document not found", decodeMutationResponse(t, rec).Detail)
}

func TestUpdate_LastWriteWins(t *testing.T) {
	handler, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/items",
		map[string]any{"id": "item-1", "qty": 5.0}, 500))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("older timestamp conflicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, newMutationRequest(http.MethodPut, "/items",
			map[string]any{"id": "item-1", "qty": 3.0}, 400))

		require.Equal(t, http.StatusConflict, rec.Code)

		resp := decodeMutationResponse(t, rec)
		require.NotNil(t, resp.Data)
		assert.Equal(t, 5.0, resp.Data["qty"])
	})

	t.Run("newer timestamp wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, newMutationRequest(http.MethodPut, "/items",
			map[string]any{"id": "item-1", "qty": 7.0}, 600))

		require.Equal(t, http.StatusOK, rec.Code)

		doc, err := store.GetDocument(context.Background(), "tenant-1", "item", "item-1")
		require.NoError(t, err)
		assert.Equal(t, int64(600), doc.ClientTimestamp)
	})

	t.Run("older timestamp forced through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Handle(rec, newMutationRequest(http.MethodPut, "/items",
			map[string]any{"id": "item-1", "qty": 1.0, "_forceOverwrite": true}, 50))

		require.Equal(t, http.StatusOK, rec.Code)

		doc, err := store.GetDocument(context.Background(), "tenant-1", "item", "item-1")
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(doc.Payload, &payload))
		assert.Equal(t, 1.0, payload["qty"])
	})
}

func TestDelete_Idempotent(t *testing.T) {
	handler, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/pos/payments",
		map[string]any{"id": "pay-1"}, 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodDelete, "/pos/payments",
		map[string]any{"id": "pay-1"}, 200))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := store.GetDocument(context.Background(), "tenant-1", "payment", "pay-1")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	// Replayed delete of an already absent document still succeeds.
	rec = httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodDelete, "/pos/payments",
		map[string]any{"id": "pay-1"}, 300))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_TenantIsolation(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/customers",
		map[string]any{"id": "cust-1"}, 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same document key under another tenant does not collide.
	req := newMutationRequest(http.MethodPost, "/customers", map[string]any{"id": "cust-1"}, 100)
	req.Header.Set(api.HeaderTenantID, "tenant-2")

	rec = httptest.NewRecorder()
	handler.Handle(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandle_UnknownEntityPath(t *testing.T) {
	handler, store := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, newMutationRequest(http.MethodPost, "/warehouse",
		map[string]any{"id": "wh-1"}, 100))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, err := store.GetDocument(context.Background(), "tenant-1", "warehouse", "wh-1")
	assert.NoError(t, err)
}
