package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hazyhaar/coffee-lexicon/pkg/catalog"
	"github.com/hazyhaar/coffee-lexicon/pkg/kit"
	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

const (
	maxPageBytes    = 8 << 20
	maxListLimit    = 1000
	requestIDHeader = "X-Request-ID"
)

// NewRouter returns an http.Handler with all API routes. reg must be
// loaded; store may be nil, in which case /v1/products answers 503.
func NewRouter(reg *lexicon.Registry, store *catalog.Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	wrap := func(name string, e kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(e)
	}

	mux := http.NewServeMux()
	h := &handler{
		describe:     wrap("describe", describeEndpoint(reg)),
		canonicalize: wrap("canonicalize", canonicalizeEndpoint(reg)),
		parsePage:    wrap("parse_page", parsePageEndpoint(reg)),
		lexStats:     wrap("lexicon", lexiconEndpoint(reg)),
		listProducts: wrap("list_products", listProductsEndpoint(store)),
		reg:          reg,
		store:        store,
	}

	mux.HandleFunc("POST /v1/describe", h.handleDescribe)
	mux.HandleFunc("GET /v1/canonicalize/{category}/{term}", h.handleCanonicalize)
	mux.HandleFunc("POST /v1/pages/{source}", h.handleParsePage)
	mux.HandleFunc("GET /v1/lexicon", h.handleLexicon)
	mux.HandleFunc("GET /v1/products", h.handleListProducts)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(requestID(mux))
}

type handler struct {
	describe     kit.Endpoint
	canonicalize kit.Endpoint
	parsePage    kit.Endpoint
	lexStats     kit.Endpoint
	listProducts kit.Endpoint
	reg          *lexicon.Registry
	store        *catalog.Store
}

// --- describe ---

func (h *handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDescriptionBytes+4096)
	var req describeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serve(w, r, h.describe, &req)
}

// --- canonicalize ---

func (h *handler) handleCanonicalize(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term")
		return
	}
	h.serve(w, r, h.canonicalize, &canonicalizeReq{
		Category: r.PathValue("category"),
		Term:     term,
	})
}

// --- parse a product page ---

func (h *handler) handleParsePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPageBytes)
	page, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "page too large")
		return
	}
	h.serve(w, r, h.parsePage, &parsePageReq{Source: r.PathValue("source"), Page: page})
}

// --- lexicon stats ---

func (h *handler) handleLexicon(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.lexStats, nil)
}

// --- catalog ---

func (h *handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	h.serve(w, r, h.listProducts, &listProductsReq{
		Source: r.URL.Query().Get("source"),
		Limit:  limit,
	})
}

// --- health ---

type healthResponse struct {
	Status  string `json:"status"`
	Terms   int    `json:"terms"`
	Sources int    `json:"sources"`
	Catalog bool   `json:"catalog"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Terms:   h.reg.Current().TermCount(),
		Sources: len(shop.All()),
		Catalog: h.store != nil,
	})
}

// --- helpers ---

func (h *handler) serve(w http.ResponseWriter, r *http.Request, e kit.Endpoint, req any) {
	resp, err := e(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps endpoint errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalid):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrUnknownSource), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrNoProductJSON):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoCatalog):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestID propagates X-Request-ID into the context, generating one when
// the client sent none, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := kit.WithTransport(kit.WithRequestID(r.Context(), id), kit.TransportHTTP)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
