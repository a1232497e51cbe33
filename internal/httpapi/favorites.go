package httpapi

import (
	"context"
	"net/http"

	"starwarsapi/internal/app/favorites"
	"starwarsapi/internal/models"
)

const (
	msgFavoriteCreated        = "Creating favorite"
	msgFavoriteAlreadyAdded   = "Favorite already added"
	msgFavoriteRemoved        = "Favorite removed"
	msgFavoriteAlreadyRemoved = "Favorite already removed"
)

type addFunc func(ctx context.Context, actorID, id int64) (favorites.Result, error)

type removeFunc func(ctx context.Context, actorID, id int64) (favorites.Outcome, error)

// handleUserFavorites lists display names of everything a user favorited.
// GET /user/{userId}/favorites
func (s *Server) handleUserFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := parsePathID(r, "userId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	entries, err := s.favorites.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}

	writeJSON(w, http.StatusOK, struct {
		Msg       string   `json:"msg"`
		Favorites []string `json:"favorites"`
	}{Msg: "User favorites", Favorites: names})
}

func (s *Server) handleAddCharacterFavorite(w http.ResponseWriter, r *http.Request) {
	s.addFavorite(w, r, "characterId", s.favorites.AddCharacterFavorite)
}

func (s *Server) handleAddPlanetFavorite(w http.ResponseWriter, r *http.Request) {
	s.addFavorite(w, r, "planetId", s.favorites.AddPlanetFavorite)
}

func (s *Server) handleRemoveCharacterFavorite(w http.ResponseWriter, r *http.Request) {
	s.removeFavorite(w, r, "characterId", s.favorites.RemoveCharacterFavorite)
}

func (s *Server) handleRemovePlanetFavorite(w http.ResponseWriter, r *http.Request) {
	s.removeFavorite(w, r, "planetId", s.favorites.RemovePlanetFavorite)
}

func (s *Server) handleCheckCharacterFavorite(w http.ResponseWriter, r *http.Request) {
	s.checkFavorite(w, r, "characterId", models.CharacterTarget)
}

func (s *Server) handleCheckPlanetFavorite(w http.ResponseWriter, r *http.Request) {
	s.checkFavorite(w, r, "planetId", models.PlanetTarget)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request, param string, add addFunc) {
	actorID, r, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := parsePathID(r, param)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	res, err := add(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := msgFavoriteAlreadyAdded
	if res.Outcome == favorites.Created {
		msg = msgFavoriteCreated
	}
	writeJSON(w, http.StatusOK, messageResponse{Msg: msg})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request, param string, remove removeFunc) {
	actorID, r, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := parsePathID(r, param)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	outcome, err := remove(r.Context(), actorID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := msgFavoriteAlreadyRemoved
	if outcome == favorites.Removed {
		msg = msgFavoriteRemoved
	}
	writeJSON(w, http.StatusOK, messageResponse{Msg: msg})
}

func (s *Server) checkFavorite(w http.ResponseWriter, r *http.Request, param string, target func(int64) models.Target) {
	actorID, r, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := parsePathID(r, param)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	favorited, err := s.favorites.IsFavorite(r.Context(), actorID, target(id))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Favorited bool `json:"favorited"`
	}{Favorited: favorited})
}
