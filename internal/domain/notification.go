package domain

import "time"

type NotificationType string

const (
	NotificationBookingRequested NotificationType = "BOOKING_REQUESTED"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCanceled  NotificationType = "BOOKING_CANCELED"
	NotificationBookingCompleted NotificationType = "BOOKING_COMPLETED"
)

// Notification is a persisted in-app message for a renter or host. Delivery
// is best-effort and never transactional with booking state.
type Notification struct {
	ID            int32            `json:"id"`
	RecipientID   int32            `json:"recipient_id"`
	RecipientRole Role             `json:"recipient_role"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	BookingID     string           `json:"booking_id,omitempty"`
	VehicleID     int32            `json:"vehicle_id,omitempty"`
	IsRead        bool             `json:"is_read"`
	CreatedOn     time.Time        `json:"created_on"`
}
