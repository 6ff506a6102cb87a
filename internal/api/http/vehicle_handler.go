package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/service"
)

type vehicleHandler struct {
	vehicles service.VehicleService
	bookings service.BookingService
}

func (h *vehicleHandler) addVehicle(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}

	var req addVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}

	v := &domain.Vehicle{
		Model:  req.Model,
		Pickup: req.Pickup,
		Pricing: domain.Pricing{
			WeekdayPriceCents: req.Weekday,
			WeekendPriceCents: req.Weekend,
		},
	}
	if err := h.vehicles.AddVehicle(r.Context(), p.ID, v); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v, "Vehicle added successfully. Awaiting verification.")
}

func (h *vehicleHandler) getVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, bookings, err := h.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleDetailResponse{Vehicle: v, Bookings: bookings}, "")
}

func (h *vehicleHandler) updateVehicle(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}

	upd := service.VehicleUpdate{
		Model:       req.Model,
		Pickup:      req.Pickup,
		IsAvailable: req.IsAvailable,
	}
	if req.Weekday != nil || req.Weekend != nil {
		if req.Weekday == nil || req.Weekend == nil {
			writeError(w, apperror.Validation("both weekday and weekend prices are required to change pricing"))
			return
		}
		upd.Pricing = &domain.Pricing{WeekdayPriceCents: *req.Weekday, WeekendPriceCents: *req.Weekend}
	}

	v, err := h.vehicles.UpdateVehicle(r.Context(), p.ID, id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v, "Vehicle updated successfully")
}

func (h *vehicleHandler) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vehicles.DeleteVehicle(r.Context(), p.ID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Vehicle deleted successfully")
}

func (h *vehicleHandler) listMyVehicles(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}
	vehicles, err := h.vehicles.ListHostVehicles(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles, "")
}

func (h *vehicleHandler) search(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	from, err := parseTimeParam(qs.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseTimeParam(qs.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := service.SearchQuery{City: qs.Get("city"), From: from, To: to}
	if latStr, lngStr := qs.Get("lat"), qs.Get("lng"); latStr != "" && lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			writeError(w, apperror.Validation("invalid coordinates"))
			return
		}
		q.Lat, q.Lng = &lat, &lng
	}
	if radiusStr := qs.Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			writeError(w, apperror.Validation("invalid radius"))
			return
		}
		q.RadiusKm = radius
	}

	vehicles, err := h.vehicles.SearchAvailable(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles, "Available vehicles fetched successfully.")
}

func (h *vehicleHandler) quote(w http.ResponseWriter, r *http.Request) {
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := h.bookings.Quote(r.Context(), id, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{VehicleID: id, StartTime: from, EndTime: to, TotalPriceCents: total}, "")
}

func (h *vehicleHandler) verifyVehicle(w http.ResponseWriter, r *http.Request) {
	if _, err := requireRole(r, domain.RoleAdmin); err != nil {
		writeError(w, err)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req verifyVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}
	if err := h.vehicles.SetVerified(r.Context(), id, req.Verified); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Vehicle verification updated")
}

func vehicleID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["vehicleId"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid vehicle id")
	}
	return int32(id), nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperror.Validation("from and to times are required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.Validation("times must be RFC3339")
	}
	return t, nil
}
