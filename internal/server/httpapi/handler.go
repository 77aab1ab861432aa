package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/vehiclereg/internal/server/services"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

const maxBodyBytes = 1 << 20

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

func (s *Server) listIncomplete(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records.Incomplete(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) checkDuplicate(w http.ResponseWriter, r *http.Request) {
	exists, err := s.records.Exists(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var rec vehicle.Record
	if err := decodeBody(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.records.Create(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	var patch vehicle.Record
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.records.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// patchStatus accepts a body naming exactly one stage, e.g. {"ownerComplete": true}.
func (s *Server) patchStatus(w http.ResponseWriter, r *http.Request) {
	var body map[string]bool
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(body) != 1 {
		s.writeError(w, r, &services.ValidationError{Field: "status", Message: "exactly one stage must be given"})
		return
	}

	var (
		name  string
		value bool
	)
	for k, v := range body {
		name, value = k, v
	}

	stage, err := vehicle.ParseStage(name)
	if err != nil {
		s.writeError(w, r, &services.ValidationError{Field: "status", Message: err.Error()})
		return
	}

	saved, err := s.records.SetFlag(r.Context(), chi.URLParam(r, "id"), stage, value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &services.ValidationError{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

func nonNil(recs []vehicle.Record) []vehicle.Record {
	if recs == nil {
		return []vehicle.Record{}
	}
	return recs
}
