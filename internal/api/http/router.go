package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"scootshare-backend/internal/security"
	"scootshare-backend/internal/service"
)

// NewRouter wires the HTTP surface. The handlers hold no business logic;
// every operation is delegated to the services.
func NewRouter(
	tokens security.TokenManager,
	vehicles service.VehicleService,
	bookings service.BookingService,
	notifications service.NotificationService,
) *mux.Router {
	vh := &vehicleHandler{vehicles: vehicles, bookings: bookings}
	bh := &bookingHandler{bookings: bookings, notifications: notifications}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/vehicles/search", vh.search).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{vehicleId}", vh.getVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{vehicleId}/quote", vh.quote).Methods(http.MethodGet)

	// Authenticated
	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(tokens))

	authed.HandleFunc("/vehicles", vh.addVehicle).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{vehicleId}", vh.updateVehicle).Methods(http.MethodPatch)
	authed.HandleFunc("/vehicles/{vehicleId}", vh.deleteVehicle).Methods(http.MethodDelete)
	authed.HandleFunc("/host/vehicles", vh.listMyVehicles).Methods(http.MethodGet)

	authed.HandleFunc("/vehicles/{vehicleId}/bookings", bh.requestBooking).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{vehicleId}/bookings/{bookingId}/confirm", bh.confirmBooking).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{vehicleId}/bookings/end", bh.endBooking).Methods(http.MethodPost)
	authed.HandleFunc("/bookings", bh.listMyBookings).Methods(http.MethodGet)

	authed.HandleFunc("/notifications", bh.listNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{notificationId}/read", bh.markNotificationRead).Methods(http.MethodPost)

	authed.HandleFunc("/admin/vehicles/{vehicleId}/verify", vh.verifyVehicle).Methods(http.MethodPost)

	return r
}
