package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	unitserrors "innkeep/internal/units/errors"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryUnitRepository struct {
	mu    sync.RWMutex
	units map[string]*model.Unit
}

// NewMemoryUnitRepository keeps units in process memory. Ids are generated
// as ObjectID hex strings so they validate the same way as stored ones.
func NewMemoryUnitRepository() UnitRepository {
	return &memoryUnitRepository{units: make(map[string]*model.Unit)}
}

func (r *memoryUnitRepository) Create(_ context.Context, unit *model.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Millisecond)
	unit.ID = primitive.NewObjectID().Hex()
	unit.CreatedAt = now
	unit.UpdatedAt = now
	stored := *unit
	r.units[unit.ID] = &stored
	return nil
}

func (r *memoryUnitRepository) FindByID(_ context.Context, id string) (*model.Unit, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	unit, ok := r.units[id]
	if !ok {
		return nil, unitserrors.ErrNotFound
	}
	out := *unit
	return &out, nil
}

func (r *memoryUnitRepository) FindByHotel(_ context.Context, hotelID string, limit int, offset int64) ([]*model.Unit, error) {
	r.mu.RLock()
	var matched []*model.Unit
	for _, u := range r.units {
		if u.HotelID == hotelID {
			c := *u
			matched = append(matched, &c)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *model.Unit) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if offset >= int64(len(matched)) {
		return []*model.Unit{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memoryUnitRepository) CountByHotel(_ context.Context, hotelID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.units {
		if u.HotelID == hotelID {
			n++
		}
	}
	return n, nil
}

func (r *memoryUnitRepository) Update(_ context.Context, id string, unit *model.Unit) error {
	if !primitive.IsValidObjectID(id) {
		return fmt.Errorf("%w: %s", unitserrors.ErrInvalidID, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.units[id]
	if !ok {
		return unitserrors.ErrNotFound
	}
	unit.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	updated := *existing
	updated.Name = unit.Name
	updated.MaxAdults = unit.MaxAdults
	updated.MaxChildren = unit.MaxChildren
	updated.MaxGuests = unit.MaxGuests
	updated.Rates = unit.Rates
	updated.Available = unit.Available
	updated.UpdatedAt = unit.UpdatedAt
	r.units[id] = &updated
	return nil
}
