package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"starwarsapi/internal/app/favorites"
	"starwarsapi/internal/app/users"
	"starwarsapi/internal/logging"
	"starwarsapi/internal/models"
	"starwarsapi/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
	Get(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// CatalogService exposes the read-only people and planets catalog.
type CatalogService interface {
	Characters(ctx context.Context) ([]models.Character, error)
	Character(ctx context.Context, id int64) (models.Character, error)
	Planets(ctx context.Context) ([]models.Planet, error)
	Planet(ctx context.Context, id int64) (models.Planet, error)
}

// FavoritesService coordinates favoriting workflows.
type FavoritesService interface {
	ListForUser(ctx context.Context, userID int64) ([]favorites.Entry, error)
	AddCharacterFavorite(ctx context.Context, actorID, characterID int64) (favorites.Result, error)
	AddPlanetFavorite(ctx context.Context, actorID, planetID int64) (favorites.Result, error)
	RemoveCharacterFavorite(ctx context.Context, actorID, characterID int64) (favorites.Outcome, error)
	RemovePlanetFavorite(ctx context.Context, actorID, planetID int64) (favorites.Outcome, error)
	IsFavorite(ctx context.Context, actorID int64, target models.Target) (bool, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	catalog   CatalogService
	favorites FavoritesService

	endpoints []string
}

// New configures a Server with the given services.
func New(users UserService, catalog CatalogService, favorites FavoritesService) *Server {
	return &Server{
		users:     users,
		catalog:   catalog,
		favorites: favorites,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	s.endpoints = s.endpoints[:0]

	s.handle(mux, "GET /{$}", s.handleSitemap)
	s.handle(mux, "GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Accounts
	s.handle(mux, "POST /signup", s.handleSignup)
	s.handle(mux, "POST /login", s.handleLogin)
	s.handle(mux, "GET /user", s.handleListUsers)
	s.handle(mux, "GET /user/{userId}", s.handleGetUser)

	// Catalog
	s.handle(mux, "GET /people", s.handleListPeople)
	s.handle(mux, "GET /people/{characterId}", s.handleGetPerson)
	s.handle(mux, "GET /planets", s.handleListPlanets)
	s.handle(mux, "GET /planets/{planetId}", s.handleGetPlanet)

	// Favorites
	s.handle(mux, "GET /user/{userId}/favorites", s.handleUserFavorites)
	s.handle(mux, "GET /favorite/people/{characterId}", s.handleCheckCharacterFavorite)
	s.handle(mux, "POST /favorite/people/{characterId}", s.handleAddCharacterFavorite)
	s.handle(mux, "DELETE /favorite/people/{characterId}", s.handleRemoveCharacterFavorite)
	s.handle(mux, "GET /favorite/planets/{planetId}", s.handleCheckPlanetFavorite)
	s.handle(mux, "POST /favorite/planets/{planetId}", s.handleAddPlanetFavorite)
	s.handle(mux, "DELETE /favorite/planets/{planetId}", s.handleRemovePlanetFavorite)
	// Legacy plural path kept for existing clients.
	s.handle(mux, "POST /favorites/planets/{planetId}", s.handleAddPlanetFavorite)

	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, handler)
	s.endpoints = append(s.endpoints, strings.Replace(pattern, "{$}", "", 1))
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	endpoints := append([]string(nil), s.endpoints...)
	sort.Strings(endpoints)
	writeJSON(w, http.StatusOK, struct {
		Endpoints []string `json:"endpoints"`
	}{Endpoints: endpoints})
}

// authenticate resolves the bearer token to a user id. It writes the error
// response itself and returns false when the request may not proceed.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (int64, *http.Request, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, r, false
	}

	userID, err := s.users.Verify(r.Context(), token)
	if err != nil {
		if !errors.Is(err, users.ErrUnauthorized) {
			err = fmt.Errorf("%w: %w", favorites.ErrUnavailable, err)
		}
		writeServiceError(w, r, err)
		return 0, r, false
	}

	r = r.WithContext(logging.ContextWithUserID(r.Context(), userID))
	return userID, r, true
}

// writeServiceError maps service and registry errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, favorites.ErrUnauthorized), errors.Is(err, users.ErrUnauthorized),
		errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, store.ErrInactiveUser):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, favorites.ErrNotFound), errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCharacterNotFound), errors.Is(err, store.ErrPlanetNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrUserExists):
		status, message = http.StatusConflict, "email already registered"
	case errors.Is(err, favorites.ErrUnavailable):
		status, message = http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusServiceUnavailable, "request cancelled"
	}

	event := logging.WithContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.WithContext(r.Context()).Error()
	}
	event.Err(err).Int("status_code", status).Str("path", r.URL.Path).Msg("request failed")

	writeJSON(w, status, errorResponse{Error: message})
}

func parsePathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
