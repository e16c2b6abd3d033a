package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/talgya/spazz-core/internal/economy"
	"github.com/talgya/spazz-core/internal/geo"
	"github.com/talgya/spazz-core/internal/match"
)

// proTeaser is shown to non-premium viewers instead of the exact readout.
const proTeaser = "Upgrade to Spazz Pro to see exactly who is nearby!"

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	roster := s.Svc.Roster()
	writeJSON(w, map[string]any{
		"name":           "Spazz",
		"tick":           s.Sim.Tick(),
		"entities":       roster.Len(),
		"wanderers":      roster.WandererCount(),
		"floor":          s.Svc.Tuning().PopulationFloor,
		"started":        s.started,
		"uptime":         humanize.Time(s.started),
		"pulse_range_km": s.Svc.Tuning().PulseRangeKm,
		"vicinity_km":    s.Svc.Tuning().VicinityKm,
	})
}

// entityView is the public shape of an entity. Social sets stay private;
// only their sizes are reported.
type entityView struct {
	ID        match.EntityID `json:"id"`
	Name      string         `json:"name"`
	Kind      match.Kind     `json:"kind"`
	Position  geo.LatLon     `json:"position"`
	OnDuty    bool           `json:"on_duty"`
	Premium   bool           `json:"premium"`
	Credits   uint64         `json:"credits"`
	Likes     int            `json:"likes"`
	Blocked   int            `json:"blocked"`
	LastNudge string         `json:"last_nudge,omitempty"`
	Connected bool           `json:"connected"`
}

func (s *Server) toView(e match.Entity) entityView {
	v := entityView{
		ID:        e.ID,
		Name:      e.Name,
		Kind:      e.Kind,
		Position:  e.Position,
		OnDuty:    e.OnDuty,
		Premium:   e.Premium,
		Credits:   e.Credits,
		Likes:     len(e.Likes),
		Blocked:   len(e.Blocked),
		Connected: s.Hub.Connected(uint64(e.ID)),
	}
	if !e.LastNudge.IsZero() {
		v.LastNudge = humanize.Time(e.LastNudge)
	}
	return v
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	snapshot := s.Svc.Roster().Snapshot()
	views := make([]entityView, 0, len(snapshot))
	for _, e := range snapshot {
		views = append(views, s.toView(e))
	}
	writeJSON(w, map[string]any{"entities": views})
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := s.Svc.Roster().Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, s.toView(e))
}

// handlePair runs a read-only gate evaluation. Nothing is dispatched and no
// state moves; non-premium viewers inside the vicinity get the upsell teaser
// instead of the exact readout.
func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	idA, err := pathID(r, "a")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	idB, err := pathID(r, "b")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := s.Svc.EvaluatePair(idA, idB, time.Now().UTC())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	viewer, err := s.Svc.Roster().Get(idA)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !viewer.Premium && out.DistanceKm <= s.Svc.Tuning().VicinityKm {
		writeJSON(w, map[string]any{
			"kind":   out.Kind,
			"teaser": proTeaser,
		})
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name"`
		Lat       float64  `json:"lat"`
		Lon       float64  `json:"lon"`
		Age       uint16   `json:"age"`
		Gender    string   `json:"gender"`
		AgeMin    uint16   `json:"age_min"`
		AgeMax    uint16   `json:"age_max"`
		Interests []string `json:"interests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pref := match.Preference{AgeMin: req.AgeMin, AgeMax: req.AgeMax, Interests: req.Interests}
	player, err := match.NewPlayer(req.Name, geo.LatLon{Lat: req.Lat, Lon: req.Lon}, req.Age, req.Gender, pref, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := s.Svc.Roster().Add(player)
	writeJSON(w, map[string]any{"id": id})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Svc.Roster().Move(id, geo.LatLon{Lat: req.Lat, Lon: req.Lon}); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleDuty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		OnDuty bool `json:"on_duty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Svc.Roster().SetDuty(id, req.OnDuty); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "on_duty": req.OnDuty})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.handleSocial(w, r, s.Svc.Roster().Like)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	s.handleSocial(w, r, s.Svc.Roster().Block)
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request, apply func(match.EntityID, match.EntityID) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Target match.EntityID `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := apply(id, req.Target); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// handleCheckin runs the full evaluate → dispatch → commit sequence for the
// entity against a target.
func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Target match.EntityID `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.Svc.Checkin(r.Context(), id, req.Target, time.Now().UTC())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Item string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, ok := s.Catalog.Item(req.Item)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown store item %q", req.Item))
		return
	}
	if err := s.Svc.Roster().SpendCredits(id, item.PriceCredits); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "item": item})
}

func (s *Server) handleGrantCredits(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Svc.Roster().GrantCredits(id, req.Amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// handleCoach translates raw feedback tags into coaching tips. The raw tags
// never leave the server.
func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, map[string]any{"tips": s.Catalog.Tips(req.Tags)})
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"store": s.Catalog.Store})
}

func pathID(r *http.Request, key string) (match.EntityID, error) {
	raw := mux.Vars(r)[key]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad entity id %q", raw)
	}
	return match.EntityID(id), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, match.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, economy.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
