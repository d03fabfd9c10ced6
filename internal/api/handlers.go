package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/inventory"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/game/session"
)

// sheetView is a sheet with everything a client needs to render it.
type sheetView struct {
	Sheet        *character.Sheet       `json:"sheet"`
	Stats        character.DerivedStats `json:"stats"`
	Remaining    int                    `json:"remaining_points"`
	ManualDieCap int                    `json:"manual_die_cap"`
	BonusDice    map[character.Face]int `json:"bonus_dice"`
}

func (s *Server) view(sheet *character.Sheet) sheetView {
	class, _ := sheet.Ledger.Record(character.KindClass)
	return sheetView{
		Sheet:        sheet,
		Stats:        sheet.Stats(s.catalog.Rules),
		Remaining:    sheet.Remaining(),
		ManualDieCap: character.ManualDieCap(sheet.Level) + class.Stats.ExtraDieSlots,
		BonusDice:    character.AvailableBonusDice(sheet.Level),
	}
}

type catalogView struct {
	Races   []*ruleset.Race      `json:"races"`
	Classes []*ruleset.Class     `json:"classes"`
	Origins []*ruleset.Origin    `json:"origins"`
	Items   []*inventory.ItemDef `json:"items"`
	Rules   *character.Rules     `json:"rules"`
}

type deltaRequest struct {
	Delta int `json:"delta"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type classChoiceRequest struct {
	Skill character.SkillID `json:"skill"`
}

type originChoiceRequest struct {
	Skills []character.SkillID `json:"skills"`
}

type addItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogView{
		Races:   s.catalog.Races(),
		Classes: s.catalog.Classes(),
		Origins: s.catalog.Origins(),
		Items:   s.catalog.Items.All(),
		Rules:   s.catalog.Rules,
	})
}

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSheet(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.sessions.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sheets/"+sess.ID())
	writeJSON(w, http.StatusCreated, s.view(sess.Sheet()))
}

// open resolves the {id} path value to a session, writing the error response
// when it cannot.
func (s *Server) open(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// respond writes the updated sheet view or the mutation's error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sheet *character.Sheet, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sheet))
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.Sheet()))
}

func (s *Server) handleUpdateSheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var patch session.Patch
	if err := decode(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.Update(r.Context(), patch)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleDeleteSheet(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Stats())
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req deltaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.AllocateAttribute(r.Context(), character.AttributeID(r.PathValue("attr")), req.Delta)
	s.respond(w, r, sheet, err)
}

func (s *Server) handlePersonal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req deltaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.AdjustPersonal(r.Context(), character.SkillID(r.PathValue("skill")), req.Delta)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.Select(r.Context(), character.BonusKind(r.PathValue("kind")), req.ID)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleClassChoice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req classChoiceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.ChooseClassSkill(r.Context(), req.Skill)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleOriginChoices(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req originChoiceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.ChooseOriginSkills(r.Context(), req.Skills)
	s.respond(w, r, sheet, err)
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var req deltaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.AdjustPool(r.Context(), r.PathValue("pool"), req.Delta)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleRollAttribute(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	res, err := sess.RollAttribute(r.Context(), character.AttributeID(r.PathValue("attr")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRollSkill(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	res, err := sess.RollSkill(r.Context(), character.SkillID(r.PathValue("skill")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseFace accepts "d4", "d6", "d8", "d10" or the bare number.
func parseFace(raw string) (character.Face, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(raw), "d"))
	if err != nil {
		return 0, fmt.Errorf("%w: die face %q", errBadRequest, raw)
	}
	return character.Face(n), nil
}

// handleDie toggles a skill die. The face "manual" addresses the manual d6;
// any other face addresses the level-gated bonus die.
func (s *Server) handleDie(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	skill := character.SkillID(r.PathValue("skill"))
	var (
		roll character.DieRoll
		err  error
	)
	if r.PathValue("face") == "manual" {
		roll, err = sess.RollSkillDie(r.Context(), skill)
	} else {
		var face character.Face
		if face, err = parseFace(r.PathValue("face")); err == nil {
			roll, err = sess.RollBonusDie(r.Context(), skill, face)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roll)
}

// queryInt reads a non-negative integer query parameter, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", errBadRequest, name, raw)
	}
	return n, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hist, err := sess.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	req := addItemRequest{Quantity: 1}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	inst, err := sess.AddItem(r.Context(), req.ItemID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	qty, err := queryInt(r, "quantity", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := sess.RemoveItem(r.Context(), r.PathValue("instance"), qty)
	s.respond(w, r, sheet, err)
}

func (s *Server) handleWeaponDamage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	critical := r.URL.Query().Get("critical") == "true"
	res, err := sess.RollWeapon(r.Context(), r.PathValue("instance"), critical)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
