package httpapi

import (
	"net/http"

	"starwarsapi/internal/models"
)

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.catalog.Characters(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		People []models.Character `json:"people"`
	}{People: people})
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(r, "characterId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	person, err := s.catalog.Character(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Person models.Character `json:"person"`
	}{Person: person})
}

func (s *Server) handleListPlanets(w http.ResponseWriter, r *http.Request) {
	planets, err := s.catalog.Planets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Planets []models.Planet `json:"planets"`
	}{Planets: planets})
}

func (s *Server) handleGetPlanet(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(r, "planetId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	planet, err := s.catalog.Planet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Planet models.Planet `json:"planet"`
	}{Planet: planet})
}
