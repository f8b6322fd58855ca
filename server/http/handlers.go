package serverhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/pipeline"
	"github.com/jyelen1110/Alfies-sub000/internal/reconcile"
	"github.com/jyelen1110/Alfies-sub000/internal/storage"
)

const maxImportBytes = 10 << 20

type sessionEntry struct {
	session *reconcile.Session
	tenant  string
	// Only one resolution step may be in flight per session; the lock
	// serializes clients that fail to do so themselves.
	mu sync.Mutex
}

type server struct {
	db       *storage.DB
	cfg      config.Config
	log      zerolog.Logger
	importer *pipeline.ImportService

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// importOrder accepts raw CSV text (text/csv) or a multipart upload of a
// .csv/.xlsx file and runs the batch import pipeline.
func (s *server) importOrder(w http.ResponseWriter, r *http.Request) {
	tenant := r.URL.Query().Get("tenant")
	if tenant == "" {
		tenant = s.cfg.DefaultTenant
	}

	var (
		result pipeline.ImportResult
		err    error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		if strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
			result, err = s.importer.ImportXLSX(r.Context(), tenant, file)
		} else {
			raw, rerr := io.ReadAll(io.LimitReader(file, maxImportBytes))
			if rerr != nil {
				writeError(w, http.StatusBadRequest, rerr.Error())
				return
			}
			result, err = s.importer.ImportCSV(r.Context(), tenant, string(raw))
		}
	} else {
		raw, rerr := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if rerr != nil {
			writeError(w, http.StatusBadRequest, rerr.Error())
			return
		}
		result, err = s.importer.ImportCSV(r.Context(), tenant, string(raw))
	}

	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type unmatchedResponse struct {
	OrderID   string                   `json:"orderId"`
	State     reconcile.State          `json:"state"`
	Remaining int                      `json:"remaining"`
	Items     []internal.UnmatchedItem `json:"items"`
	Current   *internal.UnmatchedItem  `json:"current"`
}

// listUnmatched opens (or returns) the order's resolution session.
func (s *server) listUnmatched(w http.ResponseWriter, r *http.Request) {
	entry, status, msg := s.openSession(r)
	if entry == nil {
		writeError(w, status, msg)
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	resp := unmatchedResponse{
		OrderID:   chi.URLParam(r, "orderID"),
		State:     entry.session.State(),
		Remaining: entry.session.Remaining(),
		Items:     entry.session.Items(),
	}
	if current, ok := entry.session.Current(); ok {
		resp.Current = &current
	}
	writeJSON(w, http.StatusOK, resp)
}

type resolveRequest struct {
	Skip          bool   `json:"skip"`
	ItemID        string `json:"itemId"`
	RememberAlias bool   `json:"rememberAlias"`
}

type resolveResponse struct {
	State     reconcile.State         `json:"state"`
	Remaining int                     `json:"remaining"`
	Current   *internal.UnmatchedItem `json:"current"`
}

// resolve applies one SelectMatch or Skip step to the order's session. When
// the cursor is exhausted the unmatched block is removed from the order's
// notes and the session is discarded.
func (s *server) resolve(w http.ResponseWriter, r *http.Request) {
	entry, status, msg := s.openSession(r)
	if entry == nil {
		writeError(w, status, msg)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if req.Skip {
		if err := entry.session.Skip(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
	} else {
		item, err := s.db.GetCatalogItem(r.Context(), entry.tenant, req.ItemID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if item == nil {
			writeError(w, http.StatusBadRequest, "unknown catalog item: "+req.ItemID)
			return
		}
		if err := entry.session.SelectMatch(r.Context(), item, req.RememberAlias); err != nil {
			// Storage failures surface verbatim; the cursor has not moved
			// and the same step can be retried.
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	orderID := chi.URLParam(r, "orderID")
	if entry.session.Done() {
		if err := entry.session.Finalize(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.mu.Lock()
		delete(s.sessions, orderID)
		s.mu.Unlock()
	}

	resp := resolveResponse{State: entry.session.State(), Remaining: entry.session.Remaining()}
	if current, ok := entry.session.Current(); ok {
		resp.Current = &current
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) openSession(r *http.Request) (*sessionEntry, int, string) {
	orderID := chi.URLParam(r, "orderID")

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[orderID]; ok {
		return entry, 0, ""
	}

	order, err := s.db.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, http.StatusInternalServerError, err.Error()
	}
	if order == nil {
		return nil, http.StatusNotFound, "order not found: " + orderID
	}

	entry := &sessionEntry{
		session: reconcile.NewSession(s.db, *order, s.cfg.DefaultTaxRate),
		tenant:  order.Tenant,
	}
	s.sessions[orderID] = entry
	return entry, 0, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
