package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/service"
)

type bookingHandler struct {
	bookings      service.BookingService
	notifications service.NotificationService
}

func (h *bookingHandler) requestBooking(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleRenter)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req requestBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}

	booking, err := h.bookings.RequestBooking(r.Context(), p.ID, id, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking, "Booking requested. Awaiting host confirmation.")
}

func (h *bookingHandler) confirmBooking(w http.ResponseWriter, r *http.Request) {
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
	bookingID := mux.Vars(r)["bookingId"]
	if bookingID == "" {
		writeError(w, apperror.Validation("invalid booking id"))
		return
	}

	booking, err := h.bookings.ConfirmBooking(r.Context(), p.ID, id, bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking, "Booking confirmed")
}

func (h *bookingHandler) endBooking(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleRenter, domain.RoleHost)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := vehicleID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	booking, err := h.bookings.EndBooking(r.Context(), p.ID, p.Role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking, "Booking ended successfully.")
}

func (h *bookingHandler) listMyBookings(w http.ResponseWriter, r *http.Request) {
	p, err := requireRole(r, domain.RoleRenter)
	if err != nil {
		writeError(w, err)
		return
	}
	bookings, err := h.bookings.ListRenterBookings(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings, "")
}

func (h *bookingHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	notes, total, err := h.notifications.GetNotifications(r.Context(), p.ID, p.Role, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes, "total": total}, "")
}

func (h *bookingHandler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	raw := mux.Vars(r)["notificationId"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, apperror.Validation("invalid notification id"))
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), p.ID, int32(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Notification marked as read")
}

func queryInt32(r *http.Request, key string, def int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 1 {
		return def
	}
	return int32(n)
}
