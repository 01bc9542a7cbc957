package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cat-hotel-backend/internal/engine"
	"cat-hotel-backend/internal/model"
)

// Store defines the interface for all database operations. It includes the
// narrow repository the assignment engine consumes plus the booking
// lifecycle operations the API layer needs.
type Store interface {
	engine.Repository

	// DB exposes the underlying handle for read-only query handlers.
	DB() *gorm.DB

	// WithTx returns a Store bound to an externally supplied transaction,
	// so callers can compose engine runs with their own writes.
	WithTx(tx *gorm.DB) Store

	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status model.ReservationStatus) error
	ListRoomTypes(ctx context.Context) ([]model.RoomType, error)
	ListActiveRoomTypeIDs(ctx context.Context) ([]int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) WithTx(tx *gorm.DB) Store {
	return &gormStore{db: tx}
}

// terminalStatuses are the lifecycle states that remove a reservation from
// assignment scope.
var terminalStatuses = []model.ReservationStatus{model.StatusCancelled, model.StatusCheckedOut}

// GetRoomType loads a room type with its rooms in stable category order.
// A missing room type is reported as (nil, nil), not an error.
func (s *gormStore) GetRoomType(ctx context.Context, id int64) (*model.RoomType, error) {
	var rt model.RoomType
	err := s.db.WithContext(ctx).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.id ASC") }).
		First(&rt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room type %d: %w", id, err)
	}
	return &rt, nil
}

func (s *gormStore) ListInScopeReservations(ctx context.Context, roomTypeID int64) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Cats").
		Preload("Assignment").
		Where("room_type_id = ? AND status NOT IN ?", roomTypeID, terminalStatuses).
		Order("check_in ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations for room type %d: %w", roomTypeID, err)
	}
	return reservations, nil
}

func (s *gormStore) DeleteTerminalAssignments(ctx context.Context, roomTypeID int64) error {
	// 子查询：该房型下已结束预订的 ID
	sub := s.db.Model(&model.Reservation{}).
		Select("id").
		Where("room_type_id = ? AND status IN ?", roomTypeID, terminalStatuses)

	if err := s.db.WithContext(ctx).
		Where("reservation_id IN (?)", sub).
		Delete(&model.RoomAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete terminal assignments for room type %d: %w", roomTypeID, err)
	}
	return nil
}

func (s *gormStore) DeleteAssignments(ctx context.Context, reservationIDs []int64) error {
	if len(reservationIDs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Where("reservation_id IN ?", reservationIDs).
		Delete(&model.RoomAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignments for reservations %v: %w", reservationIDs, err)
	}
	return nil
}

func (s *gormStore) CreateAssignments(ctx context.Context, assignments []model.RoomAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&assignments).Error; err != nil {
		return fmt.Errorf("failed to create %d assignments: %w", len(assignments), err)
	}
	return nil
}

// LockAssignments stamps the current assignment of a reservation. The
// locked_at IS NULL guard makes repeated calls keep the original stamp.
func (s *gormStore) LockAssignments(ctx context.Context, reservationID int64, lockedAt time.Time) error {
	if err := s.db.WithContext(ctx).
		Model(&model.RoomAssignment{}).
		Where("reservation_id = ? AND locked_at IS NULL", reservationID).
		Update("locked_at", lockedAt).Error; err != nil {
		return fmt.Errorf("failed to lock assignments for reservation %d: %w", reservationID, err)
	}
	return nil
}

func (s *gormStore) Transaction(ctx context.Context, fn func(engine.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(res).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Cats").
		Preload("Assignment").
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservation %d: %w", id, err)
	}
	return &res, nil
}

func (s *gormStore) UpdateReservationStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update reservation %d to %s: %w", id, status, err)
	}
	return nil
}

func (s *gormStore) ListRoomTypes(ctx context.Context) ([]model.RoomType, error) {
	var roomTypes []model.RoomType
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&roomTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch room types: %w", err)
	}
	return roomTypes, nil
}

func (s *gormStore) ListActiveRoomTypeIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).
		Model(&model.RoomType{}).
		Where("active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch active room type ids: %w", err)
	}
	return ids, nil
}
