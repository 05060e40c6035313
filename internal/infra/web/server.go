package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/usecase"
)

// Server is the admin HTTP API: provisioning plus read-only stats. It is
// the second provisioning surface next to the admin bot commands; both
// call the same use cases.
type Server struct {
	catalogUC   *usecase.CatalogUseCase
	provisionUC *usecase.ProvisionUseCase
	statsUC     *usecase.StatsUseCase
	apiKey      string
	log         *zerolog.Logger
}

func NewServer(
	catalogUC *usecase.CatalogUseCase,
	provisionUC *usecase.ProvisionUseCase,
	statsUC *usecase.StatsUseCase,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{
		catalogUC:   catalogUC,
		provisionUC: provisionUC,
		statsUC:     statsUC,
		apiKey:      apiKey,
		log:         &l,
	}
}

// Router builds the chi router. /healthz and /metrics stay open; the
// /api/v1 tree sits behind bearer-key auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleAddProduct)
		r.Post("/codes", s.handleAddCode)
		r.Post("/topups", s.handleTopUp)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// authMiddleware provides simple Bearer token authentication for the admin API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.apiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type productPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Kind  string `json:"kind"`
}

type productResponse struct {
	productPayload
	Unsold *int `json:"unsold,omitempty"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalogUC.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]productResponse, 0, len(items))
	for _, it := range items {
		resp := productResponse{productPayload: productPayload{
			ID:    it.Product.ID,
			Name:  it.Product.Name,
			Price: it.Product.Price,
			Kind:  string(it.Product.Kind),
		}}
		if it.Product.Kind == model.ProductKindCode {
			unsold := it.Unsold
			resp.Unsold = &unsold
		}
		out = append(out, resp)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var in productPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	p, err := s.provisionUC.AddProduct(r.Context(), in.ID, in.Name, in.Price, model.ProductKind(in.Kind))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, productPayload{ID: p.ID, Name: p.Name, Price: p.Price, Kind: string(p.Kind)})
}

func (s *Server) handleAddCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID string `json:"product_id"`
		Payload   string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	c, err := s.provisionUC.AddCode(r.Context(), in.ProductID, in.Payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID, "product_id": c.ProductID})
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
		Amount int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	newBal, err := s.provisionUC.TopUp(r.Context(), in.UserID, in.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"balance": newBal})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Collect(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encoding failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Error().Err(err).Msg("admin api error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
