package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cat-hotel-backend/internal/model"
)

// RoomTypeResponse represents the API response for a single room type.
type RoomTypeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Active      bool   `json:"active"`
	TotalRooms  int64  `json:"totalRooms"`
	OccupiedNow int64  `json:"occupiedNow"`
}

// GetRoomTypes handles the GET /api/room-types request.
func GetRoomTypes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) 一次取所有房型
		var roomTypes []model.RoomType
		if err := db.Find(&roomTypes).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room types"})
			return
		}

		// 2) 一次聚合出每个房型的房间数
		type AggRow struct {
			RoomTypeID int64
			TotalRooms int64
		}
		var aggs []AggRow
		if err := db.
			Model(&model.Room{}).
			Select("room_type_id as room_type_id, COUNT(*) as total_rooms").
			Where("active = ?", true).
			Group("room_type_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate rooms"})
			return
		}

		// 3) 再聚合出当前时刻被占用的房间数
		now := time.Now().UTC()
		type OccRow struct {
			RoomTypeID int64
			Occupied   int64
		}
		var occs []OccRow
		if err := db.
			Model(&model.RoomAssignment{}).
			Select("rooms.room_type_id as room_type_id, COUNT(DISTINCT room_assignments.room_id) as occupied").
			Joins("JOIN rooms ON rooms.id = room_assignments.room_id").
			Where("rooms.active = ?", true).
			Where("room_assignments.check_in <= ? AND room_assignments.check_out > ?", now, now).
			Group("rooms.room_type_id").
			Scan(&occs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate assignments"})
			return
		}

		// 4) 合并
		aggMap := make(map[int64]int64, len(aggs))
		for _, a := range aggs {
			aggMap[a.RoomTypeID] = a.TotalRooms
		}
		occMap := make(map[int64]int64, len(occs))
		for _, o := range occs {
			occMap[o.RoomTypeID] = o.Occupied
		}

		responses := make([]RoomTypeResponse, 0, len(roomTypes))
		for _, rt := range roomTypes {
			responses = append(responses, RoomTypeResponse{
				ID: rt.ID, Name: rt.Name, Capacity: rt.Capacity, Active: rt.Active,
				TotalRooms: aggMap[rt.ID], OccupiedNow: occMap[rt.ID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// roomBoardResponse is one room with the reservations assigned over it.
type roomBoardResponse struct {
	model.Room
	Assignments []model.RoomAssignment `json:"assignments"`
}

// GetRoomBoard handles the GET /api/room-types/{room_type_id}/rooms request.
func GetRoomBoard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room type ID"})
			return
		}

		var rooms []model.Room
		if err := db.Where("room_type_id = ?", roomTypeID).Order("id ASC").Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
			return
		}

		roomIDs := make([]int64, len(rooms))
		for i, r := range rooms {
			roomIDs[i] = r.ID
		}

		var assignments []model.RoomAssignment
		if len(roomIDs) > 0 {
			if err := db.Where("room_id IN ?", roomIDs).Order("check_in ASC").Find(&assignments).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
				return
			}
		}

		byRoom := make(map[int64][]model.RoomAssignment, len(rooms))
		for _, a := range assignments {
			byRoom[a.RoomID] = append(byRoom[a.RoomID], a)
		}

		response := make([]roomBoardResponse, 0, len(rooms))
		for _, room := range rooms {
			response = append(response, roomBoardResponse{
				Room:        room,
				Assignments: byRoom[room.ID],
			})
		}
		c.JSON(http.StatusOK, response)
	}
}
