// Package memory is an in-memory repository.Store used by tests and local
// development. Mutations apply immediately; ExecTx serializes units of work
// through a single mutex rather than providing rollback.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository"
)

type Store struct {
	mu sync.Mutex

	vehicles map[int32]*domain.Vehicle
	bookings map[string]*domain.Booking
	renters  map[int32]*domain.Renter
	hosts    map[int32]*domain.Host
	notes    []*domain.Notification

	nextVehicleID int32
	nextNoteID    int32
}

func NewStore() *Store {
	return &Store{
		vehicles: make(map[int32]*domain.Vehicle),
		bookings: make(map[string]*domain.Booking),
		renters:  make(map[int32]*domain.Renter),
		hosts:    make(map[int32]*domain.Host),
	}
}

func (s *Store) Vehicles() repository.VehicleRepository           { return (*vehicleRepo)(s) }
func (s *Store) Bookings() repository.BookingRepository           { return (*bookingRepo)(s) }
func (s *Store) Renters() repository.RenterRepository             { return (*renterRepo)(s) }
func (s *Store) Hosts() repository.HostRepository                 { return (*hostRepo)(s) }
func (s *Store) Notifications() repository.NotificationRepository { return (*noteRepo)(s) }

// ExecTx serializes units of work. The inner store is the same store; locks
// are taken per operation, so fn must not be called re-entrantly from two
// goroutines expecting isolation beyond mutual exclusion of the unit.
func (s *Store) ExecTx(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(unlocked{s})
}

// unlocked wraps the store with repositories that skip locking; used inside
// ExecTx where the store mutex is already held.
type unlocked struct {
	s *Store
}

func (u unlocked) Vehicles() repository.VehicleRepository           { return (*vehicleRepoLocked)(u.s) }
func (u unlocked) Bookings() repository.BookingRepository           { return (*bookingRepoLocked)(u.s) }
func (u unlocked) Renters() repository.RenterRepository             { return (*renterRepoLocked)(u.s) }
func (u unlocked) Hosts() repository.HostRepository                 { return (*hostRepoLocked)(u.s) }
func (u unlocked) Notifications() repository.NotificationRepository { return (*noteRepoLocked)(u.s) }
func (u unlocked) ExecTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(u)
}

// SeedHost registers a host and returns it.
func (s *Store) SeedHost(h domain.Host) *domain.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := h
	if cp.CreatedOn.IsZero() {
		cp.CreatedOn = time.Now()
	}
	s.hosts[cp.ID] = &cp
	return &cp
}

// SeedRenter registers a renter and returns it.
func (s *Store) SeedRenter(r domain.Renter) *domain.Renter {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := r
	if cp.CreatedOn.IsZero() {
		cp.CreatedOn = time.Now()
	}
	s.renters[cp.ID] = &cp
	return &cp
}

// --- vehicles ---

type vehicleRepo Store
type vehicleRepoLocked Store

func (r *vehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).Create(ctx, v)
}

func (r *vehicleRepoLocked) Create(_ context.Context, v *domain.Vehicle) error {
	r.nextVehicleID++
	v.ID = r.nextVehicleID
	v.CreatedOn = time.Now()
	v.UpdatedOn = v.CreatedOn
	cp := *v
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *vehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).GetByID(ctx, id)
}

func (r *vehicleRepoLocked) GetByID(_ context.Context, id int32) (*domain.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, apperror.NotFoundf("vehicle %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (r *vehicleRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.GetByID(ctx, id)
}

func (r *vehicleRepoLocked) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.GetByID(ctx, id)
}

func (r *vehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).Update(ctx, v)
}

func (r *vehicleRepoLocked) Update(_ context.Context, v *domain.Vehicle) error {
	if _, ok := r.vehicles[v.ID]; !ok {
		return apperror.NotFoundf("vehicle %d not found", v.ID)
	}
	cp := *v
	cp.UpdatedOn = time.Now()
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *vehicleRepo) Delete(ctx context.Context, id int32) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).Delete(ctx, id)
}

func (r *vehicleRepoLocked) Delete(_ context.Context, id int32) error {
	if _, ok := r.vehicles[id]; !ok {
		return apperror.NotFoundf("vehicle %d not found", id)
	}
	delete(r.vehicles, id)
	return nil
}

func (r *vehicleRepo) ListByHost(ctx context.Context, hostID int32) ([]domain.Vehicle, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).ListByHost(ctx, hostID)
}

func (r *vehicleRepoLocked) ListByHost(_ context.Context, hostID int32) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if v.HostID == hostID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *vehicleRepo) SearchByCity(ctx context.Context, city string, from, to time.Time) ([]domain.Vehicle, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).SearchByCity(ctx, city, from, to)
}

func (r *vehicleRepoLocked) SearchByCity(_ context.Context, city string, from, to time.Time) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if !v.IsVerified || !v.IsAvailable {
			continue
		}
		if !strings.Contains(strings.ToLower(v.Pickup.City), strings.ToLower(city)) {
			continue
		}
		if (*Store)(r).vehicleHasConfirmedOverlap(v.ID, from, to) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *vehicleRepo) SearchByRadius(ctx context.Context, lat, lng, radiusKm float64, from, to time.Time) ([]domain.Vehicle, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).SearchByRadius(ctx, lat, lng, radiusKm, from, to)
}

func (r *vehicleRepoLocked) SearchByRadius(_ context.Context, lat, lng, radiusKm float64, from, to time.Time) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range r.vehicles {
		if !v.IsVerified || !v.IsAvailable || !v.Pickup.HasCoordinates() {
			continue
		}
		if (*Store)(r).vehicleHasConfirmedOverlap(v.ID, from, to) {
			continue
		}
		dist := haversineKm(lat, lng, *v.Pickup.Lat, *v.Pickup.Lng)
		if dist > radiusKm {
			continue
		}
		cp := *v
		cp.DistanceKm = &dist
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	return out, nil
}

func (r *vehicleRepo) IDsWithExpiredConfirmed(ctx context.Context, now time.Time) ([]int32, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*vehicleRepoLocked)(r).IDsWithExpiredConfirmed(ctx, now)
}

func (r *vehicleRepoLocked) IDsWithExpiredConfirmed(_ context.Context, now time.Time) ([]int32, error) {
	seen := make(map[int32]struct{})
	var ids []int32
	for _, b := range r.bookings {
		if b.Status != domain.BookingStatusConfirmed || b.EndTime.After(now) {
			continue
		}
		if _, dup := seen[b.VehicleID]; dup {
			continue
		}
		seen[b.VehicleID] = struct{}{}
		ids = append(ids, b.VehicleID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) vehicleHasConfirmedOverlap(vehicleID int32, from, to time.Time) bool {
	for _, b := range s.bookings {
		if b.VehicleID == vehicleID && b.Status == domain.BookingStatusConfirmed && b.Overlaps(from, to) {
			return true
		}
	}
	return false
}

// --- bookings ---

type bookingRepo Store
type bookingRepoLocked Store

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).Create(ctx, b)
}

func (r *bookingRepoLocked) Create(_ context.Context, b *domain.Booking) error {
	b.CreatedOn = time.Now()
	b.UpdatedOn = b.CreatedOn
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).GetByID(ctx, id)
}

func (r *bookingRepoLocked) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperror.NotFoundf("booking %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).Update(ctx, b)
}

func (r *bookingRepoLocked) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return apperror.NotFoundf("booking %s not found", b.ID)
	}
	cp := *b
	cp.UpdatedOn = time.Now()
	r.bookings[b.ID] = &cp
	return nil
}

func (r *bookingRepo) ListByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).ListByVehicle(ctx, vehicleID)
}

func (r *bookingRepoLocked) ListByVehicle(_ context.Context, vehicleID int32) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if b.VehicleID == vehicleID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *bookingRepo) ListByRenter(ctx context.Context, renterID int32) ([]domain.Booking, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).ListByRenter(ctx, renterID)
}

func (r *bookingRepoLocked) ListByRenter(_ context.Context, renterID int32) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range r.bookings {
		if b.RenterID == renterID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (r *bookingRepo) RenterHasActive(ctx context.Context, renterID int32) (bool, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).RenterHasActive(ctx, renterID)
}

func (r *bookingRepoLocked) RenterHasActive(_ context.Context, renterID int32) (bool, error) {
	for _, b := range r.bookings {
		if b.RenterID == renterID && b.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepo) DeleteByVehicle(ctx context.Context, vehicleID int32) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*bookingRepoLocked)(r).DeleteByVehicle(ctx, vehicleID)
}

func (r *bookingRepoLocked) DeleteByVehicle(_ context.Context, vehicleID int32) error {
	for id, b := range r.bookings {
		if b.VehicleID == vehicleID {
			delete(r.bookings, id)
		}
	}
	return nil
}

// --- renters / hosts ---

type renterRepo Store
type renterRepoLocked Store

func (r *renterRepo) GetByID(ctx context.Context, id int32) (*domain.Renter, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*renterRepoLocked)(r).GetByID(ctx, id)
}

func (r *renterRepoLocked) GetByID(_ context.Context, id int32) (*domain.Renter, error) {
	rt, ok := r.renters[id]
	if !ok {
		return nil, apperror.NotFoundf("renter %d not found", id)
	}
	cp := *rt
	return &cp, nil
}

func (r *renterRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Renter, error) {
	return r.GetByID(ctx, id)
}

func (r *renterRepoLocked) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Renter, error) {
	return r.GetByID(ctx, id)
}

func (r *renterRepo) SetActiveBooking(ctx context.Context, id int32, active bool) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*renterRepoLocked)(r).SetActiveBooking(ctx, id, active)
}

func (r *renterRepoLocked) SetActiveBooking(_ context.Context, id int32, active bool) error {
	rt, ok := r.renters[id]
	if !ok {
		return apperror.NotFoundf("renter %d not found", id)
	}
	rt.HasActiveBooking = active
	return nil
}

type hostRepo Store
type hostRepoLocked Store

func (r *hostRepo) GetByID(ctx context.Context, id int32) (*domain.Host, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*hostRepoLocked)(r).GetByID(ctx, id)
}

func (r *hostRepoLocked) GetByID(_ context.Context, id int32) (*domain.Host, error) {
	h, ok := r.hosts[id]
	if !ok {
		return nil, apperror.NotFoundf("host %d not found", id)
	}
	cp := *h
	return &cp, nil
}

// --- notifications ---

type noteRepo Store
type noteRepoLocked Store

func (r *noteRepo) Create(ctx context.Context, n *domain.Notification) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*noteRepoLocked)(r).Create(ctx, n)
}

func (r *noteRepoLocked) Create(_ context.Context, n *domain.Notification) error {
	r.nextNoteID++
	n.ID = r.nextNoteID
	n.CreatedOn = time.Now()
	cp := *n
	r.notes = append(r.notes, &cp)
	return nil
}

func (r *noteRepo) ListByRecipient(ctx context.Context, recipientID int32, role domain.Role, limit, offset int32) ([]domain.Notification, int32, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*noteRepoLocked)(r).ListByRecipient(ctx, recipientID, role, limit, offset)
}

func (r *noteRepoLocked) ListByRecipient(_ context.Context, recipientID int32, role domain.Role, limit, offset int32) ([]domain.Notification, int32, error) {
	var all []domain.Notification
	for _, n := range r.notes {
		if n.RecipientID == recipientID && n.RecipientRole == role {
			all = append(all, *n)
		}
	}
	total := int32(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *noteRepo) MarkAsRead(ctx context.Context, id, recipientID int32) error {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	return (*noteRepoLocked)(r).MarkAsRead(ctx, id, recipientID)
}

func (r *noteRepoLocked) MarkAsRead(_ context.Context, id, recipientID int32) error {
	for _, n := range r.notes {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return apperror.NotFoundf("notification %d not found", id)
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(rad(lat1))*math.Cos(rad(lat2))*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
