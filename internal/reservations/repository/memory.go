package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	mongotx "innkeep/pkg/db/mongo"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryReservationRepository struct {
	mongotx.NoTransaction

	mu     sync.RWMutex
	byID   map[string]*model.Reservation
	byCode map[string]string
}

// NewMemoryReservationRepository keeps reservations in process memory and
// hands out copies, so callers never share state with the store.
func NewMemoryReservationRepository() ReservationRepository {
	return &memoryReservationRepository{
		byID:   make(map[string]*model.Reservation),
		byCode: make(map[string]string),
	}
}

func (r *memoryReservationRepository) Create(_ context.Context, reservation *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[reservation.ReferenceCode]; taken {
		return fmt.Errorf("%w: %s", reservationserrors.ErrDuplicateReference, reservation.ReferenceCode)
	}
	reservation.ID = primitive.NewObjectID().Hex()
	r.byID[reservation.ID] = reservation.Clone()
	r.byCode[reservation.ReferenceCode] = reservation.ID
	return nil
}

func (r *memoryReservationRepository) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *memoryReservationRepository) FindByReferenceCode(_ context.Context, code string) (*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *memoryReservationRepository) FindByUnit(_ context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, error) {
	matched := r.collect(func(res *model.Reservation) bool { return res.UnitID == unitID })

	if offset >= int64(len(matched)) {
		return []*model.Reservation{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memoryReservationRepository) CountByUnit(_ context.Context, unitID string) (int64, error) {
	return int64(len(r.collect(func(res *model.Reservation) bool { return res.UnitID == unitID }))), nil
}

func (r *memoryReservationRepository) ListByUnitInRange(_ context.Context, unitID string, from, to time.Time) ([]*model.Reservation, error) {
	return r.collect(func(res *model.Reservation) bool {
		return res.UnitID == unitID &&
			res.BookingStatus.OccupiesInventory() &&
			res.CheckInDate.Before(to) &&
			res.CheckOutDate.After(from)
	}), nil
}

func (r *memoryReservationRepository) UpdateIfVersion(_ context.Context, reservation *model.Reservation, expected int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[reservation.ID]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	if stored.Version != expected {
		return fmt.Errorf("%w: expected version %d, found %d", reservationserrors.ErrConcurrentModification, expected, stored.Version)
	}

	next := reservation.Clone()
	next.Version = expected + 1
	r.byID[reservation.ID] = next
	reservation.Version = next.Version
	return nil
}

// collect returns copies of matching reservations ordered by check-in date.
func (r *memoryReservationRepository) collect(match func(*model.Reservation) bool) []*model.Reservation {
	r.mu.RLock()
	var out []*model.Reservation
	for _, res := range r.byID {
		if match(res) {
			out = append(out, res.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *model.Reservation) int {
		if c := a.CheckInDate.Compare(b.CheckInDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
