package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/possync/internal/server/storage"
	"github.com/iudanet/possync/pkg/api"
)

// pathTable maps the well-known REST paths back to entity kinds. Unknown
// paths map to their first segment, mirroring the client's /{entity}
// fallback.
var pathTable = map[string]string{
	"/pos/invoices":  "invoice",
	"/pos/payments":  "payment",
	"/customers":     "customer",
	"/items":         "item",
	"/stock/entries": "stock_entry",
}

// MutationHandler applies replayed offline mutations to document storage.
// Its conflict policy: a non-forced update older than the stored document's
// accepted client timestamp, or a create against an existing key, returns
// 409 with the stored document in the response data field.
type MutationHandler struct {
	store  storage.DocumentStorage
	logger *slog.Logger
}

// NewMutationHandler creates a mutation handler
func NewMutationHandler(store storage.DocumentStorage, logger *slog.Logger) *MutationHandler {
	return &MutationHandler{
		store:  store,
		logger: logger,
	}
}

// entityFromPath resolves the entity kind for a request path.
func entityFromPath(path string) string {
	if entity, ok := pathTable[path]; ok {
		return entity
	}
	return strings.TrimPrefix(path, "/")
}

// Handle dispatches POST/PUT/DELETE mutations for any entity path.
func (h *MutationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get(api.HeaderTenantID)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "missing tenant header")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	docID, _ := body["id"].(string)
	if docID == "" {
		writeError(w, http.StatusBadRequest, "body must carry a string id field")
		return
	}

	clientTS, _ := strconv.ParseInt(r.Header.Get(api.HeaderClientTimestamp), 10, 64)
	force, _ := body["_forceOverwrite"].(bool)
	entity := entityFromPath(r.URL.Path)

	payload, err := json.Marshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to serialize body")
		return
	}

	doc := &storage.Document{
		TenantID:        tenantID,
		Entity:          entity,
		DocID:           docID,
		Payload:         payload,
		ClientTimestamp: clientTS,
	}

	switch r.Method {
	case http.MethodPost:
		h.create(w, r, doc, force)
	case http.MethodPut:
		h.update(w, r, doc, force)
	case http.MethodDelete:
		h.delete(w, r, doc)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *MutationHandler) create(w http.ResponseWriter, r *http.Request, doc *storage.Document, force bool) {
	err := h.store.CreateDocument(r.Context(), doc)
	if err == nil {
		writeName(w, http.StatusCreated, doc.DocID)
		return
	}

	if !errors.Is(err, storage.ErrDocumentExists) {
		h.logger.Error("create failed", "entity", doc.Entity, "doc_id", doc.DocID, "error", err)
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}

	if force {
		if err := h.store.UpdateDocument(r.Context(), doc); err != nil {
			h.logger.Error("forced create failed", "entity", doc.Entity, "doc_id", doc.DocID, "error", err)
			writeError(w, http.StatusInternalServerError, "create failed")
			return
		}
		writeName(w, http.StatusOK, doc.DocID)
		return
	}

	h.writeConflict(w, r, doc)
}

func (h *MutationHandler) update(w http.ResponseWriter, r *http.Request, doc *storage.Document, force bool) {
	existing, err := h.store.GetDocument(r.Context(), doc.TenantID, doc.Entity, doc.DocID)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("update lookup failed", "entity", doc.Entity, "doc_id", doc.DocID, "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	// Last write wins against the original client timestamp unless the
	// client explicitly forces its version.
	if !force && existing.ClientTimestamp > doc.ClientTimestamp {
		h.writeConflict(w, r, doc)
		return
	}

	if err := h.store.UpdateDocument(r.Context(), doc); err != nil {
		h.logger.Error("update failed", "entity", doc.Entity, "doc_id", doc.DocID, "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	writeName(w, http.StatusOK, doc.DocID)
}

func (h *MutationHandler) delete(w http.ResponseWriter, r *http.Request, doc *storage.Document) {
	if err := h.store.DeleteDocument(r.Context(), doc.TenantID, doc.Entity, doc.DocID); err != nil {
		h.logger.Error("delete failed", "entity", doc.Entity, "doc_id", doc.DocID, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	writeName(w, http.StatusOK, doc.DocID)
}

// writeConflict returns 409 with the stored document in the data field so
// the client can surface both versions to a human.
func (h *MutationHandler) writeConflict(w http.ResponseWriter, r *http.Request, doc *storage.Document) {
	resp := api.MutationResponse{
		Message: "document modified concurrently",
	}

	existing, err := h.store.GetDocument(r.Context(), doc.TenantID, doc.Entity, doc.DocID)
	if err == nil {
		var data map[string]any
		if err := json.Unmarshal(existing.Payload, &data); err == nil {
			resp.Data = data
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeName(w http.ResponseWriter, status int, name string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.MutationResponse{Name: name})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.MutationResponse{Detail: detail})
}
