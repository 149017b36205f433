package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ── Deck HTTP Service ──────────────────────────────────────────────

type deckHandler struct {
	store         DeckStore
	token         string
	defaultAuthor string
	log           *zap.Logger
}

// NewDeckRouter serves the deck collection as JSON. When token is set,
// POST requires "Authorization: Bearer <token>".
func NewDeckRouter(store DeckStore, token, defaultAuthor string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &deckHandler{store: store, token: token, defaultAuthor: defaultAuthor, log: log}
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/decks", func(api chi.Router) {
		api.Get("/", h.handleList)
		api.With(h.requireToken).Post("/", h.handleAdd)
	})
	return r
}

func (h *deckHandler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *deckHandler) handleList(w http.ResponseWriter, r *http.Request) {
	decks, err := h.store.ListDecks(r.Context())
	if err != nil {
		h.log.Error("list decks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list decks failed")
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (h *deckHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var d Deck
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid deck payload")
		return
	}
	if err := d.Validate(h.defaultAuthor); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The server owns identity and ordering.
	d.ID = ""
	d.CreatedAt = time.Time{}
	saved, err := h.store.AddDeck(r.Context(), d)
	if err != nil {
		h.log.Error("add deck", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "add deck failed")
		return
	}
	h.log.Info("deck added", zap.String("id", saved.ID), zap.String("name", saved.Name))
	writeJSON(w, http.StatusCreated, saved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ── Deck HTTP Client ───────────────────────────────────────────────

// HTTPDeckStore talks to a NewDeckRouter server.
type HTTPDeckStore struct {
	httpClient *http.Client
	server     string
	token      string
}

func NewHTTPDeckStore(server, token string) *HTTPDeckStore {
	return &HTTPDeckStore{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		server:     strings.TrimRight(server, "/"),
		token:      token,
	}
}

func (c *HTTPDeckStore) request(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("deck api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPDeckStore) AddDeck(ctx context.Context, d Deck) (Deck, error) {
	var saved Deck
	if err := c.request(ctx, http.MethodPost, "/api/decks", d, &saved); err != nil {
		return Deck{}, err
	}
	return saved, nil
}

func (c *HTTPDeckStore) ListDecks(ctx context.Context) ([]Deck, error) {
	var decks []Deck
	if err := c.request(ctx, http.MethodGet, "/api/decks", nil, &decks); err != nil {
		return nil, err
	}
	return decks, nil
}
