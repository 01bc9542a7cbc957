package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cat-hotel-backend/config"
	"cat-hotel-backend/internal/api"
	"cat-hotel-backend/internal/model"
	"cat-hotel-backend/internal/store"
)

// TestAssignmentLifecycle walks a room category through the whole
// reservation lifecycle over the HTTP API and verifies the stored
// assignments at each step.
func TestAssignmentLifecycle(t *testing.T) {
	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	// Run database migrations.
	err = testDB.AutoMigrate(
		&model.RoomType{}, &model.Room{}, &model.Customer{}, &model.Cat{},
		&model.Reservation{}, &model.RoomAssignment{},
	)
	require.NoError(t, err)

	// 2. Seed one category with two rooms and capacity 2.
	roomType := model.RoomType{ID: 1, Name: "deluxe", Capacity: 2, Active: true}
	require.NoError(t, testDB.Create(&roomType).Error)
	require.NoError(t, testDB.Create(&[]model.Room{
		{ID: 1, RoomTypeID: 1, Name: "A", Active: true},
		{ID: 2, RoomTypeID: 1, Name: "B", Active: true},
	}).Error)
	require.NoError(t, testDB.Create(&[]model.Customer{
		{ID: 1, Name: "Lin", Email: "lin@example.com"},
		{ID: 2, Name: "Park", Email: "park@example.com"},
		{ID: 3, Name: "Wei", Email: "wei@example.com"},
	}).Error)
	require.NoError(t, testDB.Create(&[]model.Cat{
		{ID: 1, CustomerID: 1, Name: "Mochi"},
		{ID: 2, CustomerID: 1, Name: "Tofu"},
		{ID: 3, CustomerID: 2, Name: "Biscuit"},
	}).Error)

	// 3. Router over the real store.
	appStore := store.NewGormStore(testDB)
	router := api.NewRouter(appStore, &config.ServerConfig{
		RateLimitPerSec: 1000,
		CacheTTLSeconds: 1,
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assignmentOf := func(reservationID int64) *model.RoomAssignment {
		var a model.RoomAssignment
		err := testDB.Where("reservation_id = ?", reservationID).First(&a).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		require.NoError(t, err)
		return &a
	}

	// --- Step 1: first reservation gets a room ---
	w := do(http.MethodPost, "/api/reservations", map[string]any{
		"customerId": 1, "roomTypeId": 1,
		"checkIn": "2026-01-10", "checkOut": "2026-01-15",
		"allowSharing": true, "catIds": []int64{1},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var r1 model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r1))
	require.NotNil(t, assignmentOf(r1.ID))
	assert.Equal(t, 1, assignmentOf(r1.ID).Occupants)

	// --- Step 2: same customer's overlapping stay lands in the same room ---
	w = do(http.MethodPost, "/api/reservations", map[string]any{
		"customerId": 1, "roomTypeId": 1,
		"checkIn": "2026-01-12", "checkOut": "2026-01-18",
		"allowSharing": true, "catIds": []int64{2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r2 model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r2))
	assert.Equal(t, assignmentOf(r1.ID).RoomID, assignmentOf(r2.ID).RoomID,
		"one customer's cats share a room at peak capacity 2")

	// --- Step 3: an exclusive stranger takes the other room ---
	w = do(http.MethodPost, "/api/reservations", map[string]any{
		"customerId": 2, "roomTypeId": 1,
		"checkIn": "2026-01-12", "checkOut": "2026-01-16",
		"allowSharing": false, "catIds": []int64{3},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r3 model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r3))
	assert.NotEqual(t, assignmentOf(r1.ID).RoomID, assignmentOf(r3.ID).RoomID)
	assert.Equal(t, assignmentOf(r1.ID).RoomID, assignmentOf(r2.ID).RoomID)

	// --- Step 4: infeasible demand is rejected atomically ---
	w = do(http.MethodPost, "/api/reservations", map[string]any{
		"customerId": 3, "roomTypeId": 1,
		"checkIn": "2026-01-12", "checkOut": "2026-01-16",
		"allowSharing": false,
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "cannot currently accept")

	var count int64
	require.NoError(t, testDB.Model(&model.Reservation{}).Count(&count).Error)
	assert.EqualValues(t, 3, count, "the rejected reservation must not be stored")

	// --- Step 5: check-in locks the assignment in place ---
	w = do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/check-in", r1.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	locked := assignmentOf(r1.ID)
	require.NotNil(t, locked)
	require.NotNil(t, locked.LockedAt)
	lockedRowID := locked.ID
	lockedRoomID := locked.RoomID

	// --- Step 6: a manual rebalance never touches the locked row ---
	w = do(http.MethodPost, "/api/room-types/1/rebalance", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	after := assignmentOf(r1.ID)
	require.NotNil(t, after)
	assert.Equal(t, lockedRowID, after.ID, "locked assignment must not be recreated")
	assert.Equal(t, lockedRoomID, after.RoomID)
	require.NotNil(t, after.LockedAt)

	// --- Step 7: cancellation sweeps the assignment out ---
	w = do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", r2.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Nil(t, assignmentOf(r2.ID))

	// --- Step 8: check-out releases the locked room ---
	w = do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/check-out", r1.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Nil(t, assignmentOf(r1.ID))
	require.NotNil(t, assignmentOf(r3.ID), "the remaining guest keeps a room")

	// --- Step 9: read endpoints reflect the final state ---
	w = do(http.MethodGet, "/api/room-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []api.RoomTypeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types, 1)
	assert.EqualValues(t, 2, types[0].TotalRooms)

	w = do(http.MethodGet, "/api/room-types/1/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"assignments"`)
}

// TestCancellationSurvivesInfeasibleCategory verifies that moving a
// reservation into a terminal status commits even when the category can no
// longer place its remaining demand: a cancellation frees capacity, so an
// infeasible rebalance must not roll it back.
func TestCancellationSurvivesInfeasibleCategory(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:terminal_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to the in-memory database: %v", err)
	}
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	err = testDB.AutoMigrate(
		&model.RoomType{}, &model.Room{}, &model.Customer{}, &model.Cat{},
		&model.Reservation{}, &model.RoomAssignment{},
	)
	require.NoError(t, err)

	require.NoError(t, testDB.Create(&model.RoomType{ID: 1, Name: "deluxe", Capacity: 2, Active: true}).Error)
	require.NoError(t, testDB.Create(&[]model.Room{
		{ID: 1, RoomTypeID: 1, Name: "A", Active: true},
		{ID: 2, RoomTypeID: 1, Name: "B", Active: true},
	}).Error)
	require.NoError(t, testDB.Create(&[]model.Customer{
		{ID: 1, Name: "Lin", Email: "lin@example.com"},
		{ID: 2, Name: "Park", Email: "park@example.com"},
	}).Error)

	appStore := store.NewGormStore(testDB)
	router := api.NewRouter(appStore, &config.ServerConfig{
		RateLimitPerSec: 1000,
		CacheTTLSeconds: 1,
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Stays bracket the present so the occupancy aggregate sees them.
	day := func(offset int) string {
		return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
	}

	create := func(customerID int64, allowSharing bool) model.Reservation {
		w := do(http.MethodPost, "/api/reservations", map[string]any{
			"customerId": customerID, "roomTypeId": 1,
			"checkIn": day(-1), "checkOut": day(5),
			"allowSharing": allowSharing,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var res model.Reservation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res
	}

	r1 := create(1, true)
	r2 := create(1, true)
	r3 := create(2, false)

	// Retire the room hosting the shared pair. The category now has one
	// room left for one exclusive and one sharing stay: infeasible.
	var pairRoomID int64
	require.NoError(t, testDB.Model(&model.RoomAssignment{}).
		Where("reservation_id = ?", r1.ID).Select("room_id").Scan(&pairRoomID).Error)
	require.NoError(t, testDB.Model(&model.Room{}).
		Where("id = ?", pairRoomID).Update("active", false).Error)

	// Cancellation must stick regardless.
	w := do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", r1.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	var reloaded model.Reservation
	require.NoError(t, testDB.First(&reloaded, r1.ID).Error)
	assert.Equal(t, model.StatusCancelled, reloaded.Status)

	var count int64
	require.NoError(t, testDB.Model(&model.RoomAssignment{}).
		Where("reservation_id = ?", r1.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count, "the cancelled stay's assignment is swept out")

	// The category really is infeasible: a manual rebalance still conflicts.
	w = do(http.MethodPost, "/api/room-types/1/rebalance", nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// The stranded assignment on the retired room stays off the books.
	w = do(http.MethodGet, "/api/room-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []api.RoomTypeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types, 1)
	assert.EqualValues(t, 1, types[0].TotalRooms)
	assert.EqualValues(t, 1, types[0].OccupiedNow)

	// Checking the exclusive guest out restores feasibility and the next
	// rebalance rehomes the remaining stay onto the surviving room.
	w = do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/check-out", r3.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	var rehomed model.RoomAssignment
	require.NoError(t, testDB.Where("reservation_id = ?", r2.ID).First(&rehomed).Error)
	assert.NotEqual(t, pairRoomID, rehomed.RoomID)
}
