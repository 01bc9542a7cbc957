package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cat-hotel-backend/config"
	"cat-hotel-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.RoomType{},
		&model.Room{},
		&model.Customer{},
		&model.Cat{},
		&model.Reservation{},
		&model.RoomAssignment{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnableRangeIndex {
		log.Println("Range index is enabled, applying range-index DDL...")
		if err := applyRangeIndexDDL(db); err != nil {
			log.Printf("Warning: failed to apply some range-index DDL: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyRangeIndexDDL speeds up interval-overlap lookups on assignments.
// Only valid on PostgreSQL; guarded by config.
func applyRangeIndexDDL(db *gorm.DB) error {
	ddls := []string{
		// 1) 必备扩展
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		// 2) 基本校验：入住必须早于退房
		"ALTER TABLE room_assignments " +
			"ADD CONSTRAINT room_assignments_stay_valid CHECK (check_in < check_out);",

		// 3) 表达式 GIST 索引：支持 @>、&& 等范围操作（下界闭、上界开）
		"CREATE INDEX IF NOT EXISTS idx_room_assignments_stay_expr ON room_assignments " +
			"USING GIST (room_id, tstzrange(check_in, check_out, '[)'));",

		// 4) 常用索引：按预订拉当前分配
		"CREATE INDEX IF NOT EXISTS idx_room_assignments_reservation ON room_assignments (reservation_id);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
