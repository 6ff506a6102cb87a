package service

import (
	"context"
	"fmt"

	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/logger"
	"scootshare-backend/internal/repository"
)

// notifier persists in-app notification rows and sends emails. Everything is
// best-effort: failures are logged, never returned, so a lost email can
// never roll back a booking transition.
type notifier struct {
	notes repository.NotificationRepository
	email EmailSender
}

func NewNotifier(notes repository.NotificationRepository, email EmailSender) Notifier {
	return &notifier{notes: notes, email: email}
}

func (n *notifier) BookingRequested(ctx context.Context, ev BookingEvent) {
	summary := bookingSummary(ev)
	if ev.Host != nil {
		n.deliver(ctx, &domain.Notification{
			RecipientID:   ev.Host.ID,
			RecipientRole: domain.RoleHost,
			Type:          domain.NotificationBookingRequested,
			Title:         "New Booking Request",
			Message:       fmt.Sprintf("%s requested your %s %s.", renterName(ev), ev.Vehicle.Model, summary),
			BookingID:     ev.Booking.ID,
			VehicleID:     ev.Vehicle.ID,
		}, ev.Host.Email, ev.Host.Name)
	}
}

func (n *notifier) BookingConfirmed(ctx context.Context, ev BookingEvent) {
	summary := bookingSummary(ev)
	if ev.Renter != nil {
		n.deliver(ctx, &domain.Notification{
			RecipientID:   ev.Renter.ID,
			RecipientRole: domain.RoleRenter,
			Type:          domain.NotificationBookingConfirmed,
			Title:         "Booking Confirmed",
			Message:       fmt.Sprintf("Your booking for %s %s was confirmed by the host.", ev.Vehicle.Model, summary),
			BookingID:     ev.Booking.ID,
			VehicleID:     ev.Vehicle.ID,
		}, ev.Renter.Email, ev.Renter.Name)
	}
}

func (n *notifier) BookingCanceled(ctx context.Context, ev BookingEvent, reason string) {
	summary := bookingSummary(ev)
	if ev.Renter != nil {
		n.deliver(ctx, &domain.Notification{
			RecipientID:   ev.Renter.ID,
			RecipientRole: domain.RoleRenter,
			Type:          domain.NotificationBookingCanceled,
			Title:         "Booking Canceled",
			Message:       fmt.Sprintf("Your booking request for %s %s was canceled: %s.", ev.Vehicle.Model, summary, reason),
			BookingID:     ev.Booking.ID,
			VehicleID:     ev.Vehicle.ID,
		}, ev.Renter.Email, ev.Renter.Name)
	}
}

func (n *notifier) BookingCompleted(ctx context.Context, ev BookingEvent, autoEnded bool) {
	summary := bookingSummary(ev)
	suffix := "ended"
	if autoEnded {
		suffix = "automatically completed at the end of its window"
	}
	if ev.Renter != nil {
		n.deliver(ctx, &domain.Notification{
			RecipientID:   ev.Renter.ID,
			RecipientRole: domain.RoleRenter,
			Type:          domain.NotificationBookingCompleted,
			Title:         "Booking Completed",
			Message:       fmt.Sprintf("Your booking for %s %s was %s.", ev.Vehicle.Model, summary, suffix),
			BookingID:     ev.Booking.ID,
			VehicleID:     ev.Vehicle.ID,
		}, ev.Renter.Email, ev.Renter.Name)
	}
	if ev.Host != nil {
		n.deliver(ctx, &domain.Notification{
			RecipientID:   ev.Host.ID,
			RecipientRole: domain.RoleHost,
			Type:          domain.NotificationBookingCompleted,
			Title:         "Booking Completed",
			Message:       fmt.Sprintf("The booking for your %s %s was %s by %s.", ev.Vehicle.Model, summary, suffix, renterName(ev)),
			BookingID:     ev.Booking.ID,
			VehicleID:     ev.Vehicle.ID,
		}, ev.Host.Email, ev.Host.Name)
	}
}

func (n *notifier) deliver(ctx context.Context, note *domain.Notification, email, name string) {
	if err := n.notes.Create(ctx, note); err != nil {
		logger.Warn("failed to persist notification", "type", note.Type, "recipient_id", note.RecipientID, "error", err)
	}
	if email == "" {
		return
	}
	if err := n.email.Send(ctx, email, name, note.Title, note.Message); err != nil {
		logger.Warn("failed to send notification email", "type", note.Type, "to", email, "error", err)
	}
}

func bookingSummary(ev BookingEvent) string {
	return fmt.Sprintf("from %s to %s",
		ev.Booking.StartTime.Format("Jan 2 15:04"),
		ev.Booking.EndTime.Format("Jan 2 15:04"))
}

func renterName(ev BookingEvent) string {
	if ev.Renter != nil && ev.Renter.Name != "" {
		return ev.Renter.Name
	}
	return "a renter"
}
