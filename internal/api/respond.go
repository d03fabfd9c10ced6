package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/inventory"
	"github.com/cory-johannsen/dvh/internal/game/session"
	"github.com/cory-johannsen/dvh/internal/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorTable = []errorMapping{
	{storage.ErrSheetNotFound, http.StatusNotFound, "sheet_not_found"},
	{session.ErrUnknownSelection, http.StatusNotFound, "unknown_selection"},
	{inventory.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{character.ErrPoolExhausted, http.StatusConflict, "pool_exhausted"},
	{character.ErrAttributeOutOfRange, http.StatusConflict, "attribute_out_of_range"},
	{character.ErrDieUnavailable, http.StatusConflict, "die_unavailable"},
	{character.ErrDieCapReached, http.StatusConflict, "die_cap_reached"},
	{inventory.ErrOverCapacity, http.StatusConflict, "over_capacity"},
	{session.ErrNoSelection, http.StatusConflict, "no_selection"},
	{character.ErrUnknownAttribute, http.StatusBadRequest, "unknown_attribute"},
	{character.ErrUnknownSkill, http.StatusBadRequest, "unknown_skill"},
	{character.ErrInvalidChoice, http.StatusBadRequest, "invalid_choice"},
	{session.ErrUnknownPool, http.StatusBadRequest, "unknown_pool"},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{inventory.ErrNotWeapon, http.StatusBadRequest, "not_a_weapon"},
	{errBadRequest, http.StatusBadRequest, "bad_request"},
}

// writeError maps err onto a status and error code. Unmapped errors are logged
// and reported as internal errors without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, errorResponse{Error: m.code, Message: err.Error()})
			return
		}
	}
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"})
}

// decode reads a JSON body into dst. An empty body leaves dst unchanged.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
