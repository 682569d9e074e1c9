package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

// handleStoreRead handles GET /api/{collection}.
func (s *Server) handleStoreRead(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCollection, nil)
		return
	}

	var records []json.RawMessage
	if err := s.store.Load(r.Context(), c, &records); err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleStoreWrite handles POST /api/{collection}: orders take a single order
// to prepend, news, scores and products take a whole replacement array.
func (s *Server) handleStoreWrite(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCollection, nil)
		return
	}
	if c == model.CollectionOrders {
		s.handleAppendOrder(w, r)
		return
	}
	if !c.Replaceable() {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, fmt.Errorf("%s does not accept a bulk replace", c))
		return
	}

	var records []json.RawMessage
	if err := decode(r, &records); err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		s.fail(w, r, fmt.Errorf("%w: body must be a JSON array", ErrBadRequest))
		return
	}
	if err := s.store.Replace(r.Context(), c, records); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleAppendOrder(w http.ResponseWriter, r *http.Request) {
	var o model.Order
	if err := decode(r, &o); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.AppendOrder(r.Context(), o); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleStoreBlock handles POST /api/users/block.
func (s *Server) handleStoreBlock(w http.ResponseWriter, r *http.Request) {
	var req model.BlockRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SetUserBlocked(r.Context(), req.UserID, req.IsBlocked); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleStoreRegister handles POST /api/users/register.
func (s *Server) handleStoreRegister(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := decode(r, &u); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.RegisterUser(r.Context(), u); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
