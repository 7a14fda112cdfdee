package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"lovehome/internal/app"
	"lovehome/internal/domain"
)

const maxImageBytes = 8 << 20

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api/v1.0", func(r chi.Router) {
		r.Get("/areas", h.getAreas)
		r.Get("/houses", h.listHouses)
		r.Get("/houses/index", h.getHouseIndex)
		r.Get("/houses/{id}", h.getHouseDetail)
		r.With(RequireUser).Post("/houses", h.saveHouse)
		r.With(RequireUser).Post("/houses/{id}/images", h.saveHouseImage)
		r.With(RequireUser).Get("/user/houses", h.getUserHouses)
	})
}

// RequireUser rejects requests with no established identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			writeEnvelope(w, app.Fail(app.CodeLoginErr, "login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// The envelope always travels on HTTP 200; errno carries the outcome.
func writeEnvelope(w http.ResponseWriter, env app.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("write envelope failed")
	}
}

// writeRaw emits bytes that already form a complete envelope.
func writeRaw(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

func errEnvelope(err error) app.Envelope {
	switch {
	case errors.Is(err, domain.ErrInvalidParam):
		return app.Fail(app.CodeParamErr, "invalid parameters")
	case errors.Is(err, domain.ErrNoData), errors.Is(err, domain.ErrNotFound):
		return app.Fail(app.CodeNoData, "no data")
	case errors.Is(err, domain.ErrThirdParty):
		return app.Fail(app.CodeThirdErr, "third-party service failed")
	default:
		log.Error().Err(err).Msg("store query failed")
		return app.Fail(app.CodeDBErr, "store query failed")
	}
}

func (h *Handlers) getAreas(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Q.Areas(r.Context())
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeEnvelope(w, app.OK(raw))
}

func (h *Handlers) getHouseIndex(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Q.HomePage(r.Context())
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeEnvelope(w, app.OK(raw))
}

func (h *Handlers) getHouseDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}

	raw, err := h.Q.HouseDetail(r.Context(), id)
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}

	// The identity is per-request and never part of the cached house.
	userID := "-1"
	if uid, ok := UserID(r.Context()); ok {
		userID = strconv.FormatInt(uid, 10)
	}
	writeEnvelope(w, app.OK(struct {
		UserID string          `json:"user_id"`
		House  json.RawMessage `json:"house"`
	}{UserID: userID, House: raw}))
}

func (h *Handlers) listHouses(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	page := 1
	if p := qs.Get("p"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
			return
		}
		page = n
	}

	raw, err := h.Q.SearchHouses(r.Context(), app.SearchQuery{
		AreaID:    qs.Get("aid"),
		StartDate: qs.Get("sd"),
		EndDate:   qs.Get("ed"),
		SortKey:   qs.Get("sk"),
		Page:      page,
	})
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeRaw(w, raw)
}

func (h *Handlers) getUserHouses(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserID(r.Context())
	items, err := h.Q.UserHouses(r.Context(), uid)
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeEnvelope(w, app.OK(struct {
		Houses []domain.HouseListItem `json:"houses"`
	}{Houses: items}))
}

// publishWire is the publish form as it arrives: every field is text,
// matching the historical client contract.
type publishWire struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	AreaID    string `json:"area_id"`
	Address   string `json:"address"`
	RoomCount string `json:"room_count"`
	Acreage   string `json:"acreage"`
	Unit      string `json:"unit"`
	Capacity  string `json:"capacity"`
	Beds      string `json:"beds"`
	Deposit   string `json:"deposit"`
	MinDays   string `json:"min_days"`
	MaxDays   string `json:"max_days"`
}

func (h *Handlers) saveHouse(w http.ResponseWriter, r *http.Request) {
	var in publishWire
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}

	bad := false
	num := func(s string) int {
		n, err := strconv.Atoi(s)
		if err != nil {
			bad = true
		}
		return n
	}
	params := app.PublishHouseParams{
		Title:     in.Title,
		Price:     in.Price,
		AreaID:    int64(num(in.AreaID)),
		Address:   in.Address,
		RoomCount: num(in.RoomCount),
		Acreage:   num(in.Acreage),
		Unit:      in.Unit,
		Capacity:  num(in.Capacity),
		Beds:      in.Beds,
		Deposit:   in.Deposit,
		MinDays:   num(in.MinDays),
		MaxDays:   num(in.MaxDays),
	}
	if bad {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}

	uid, _ := UserID(r.Context())
	houseID, err := h.C.PublishHouse(r.Context(), uid, params)
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeEnvelope(w, app.OK(struct {
		HouseID int64 `json:"house_id"`
	}{HouseID: houseID}))
}

func (h *Handlers) saveHouseImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}

	file, _, err := r.FormFile("house_image")
	if err != nil {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeEnvelope(w, app.Fail(app.CodeParamErr, "invalid parameters"))
		return
	}

	url, err := h.C.SaveHouseImage(r.Context(), id, data)
	if err != nil {
		writeEnvelope(w, errEnvelope(err))
		return
	}
	writeEnvelope(w, app.OK(struct {
		URL string `json:"url"`
	}{URL: url}))
}
