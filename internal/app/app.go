package app

import (
	"os"

	"marketflow/internal/attendance"
	"marketflow/internal/employee"
	"marketflow/internal/leave"
	"marketflow/internal/office"
	"marketflow/internal/schedule"
	"marketflow/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}
	if err := seedMasterData(gormDB); err != nil {
		return err
	}

	return registerModules(router, sqlDB, gormDB, rdb)
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&schedule.WorkSchedule{},
		&office.Config{},
		&employee.Employee{},
		&attendance.Attendance{},
		&leave.Leave{},
	); err != nil {
		return err
	}

	// The outbox and counter repositories run on database/sql, so their
	// tables are created directly.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sequence_counters (
			counter_type varchar(60) PRIMARY KEY,
			last_value   bigint NOT NULL,
			updated_at   timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id             uuid PRIMARY KEY,
			request_id     varchar(64),
			aggregate_type varchar(40) NOT NULL,
			aggregate_id   uuid NOT NULL,
			event_type     varchar(80) NOT NULL,
			topic          varchar(120) NOT NULL,
			payload        jsonb NOT NULL,
			status         varchar(20) NOT NULL,
			retry_count    int NOT NULL DEFAULT 0,
			error_message  varchar(500),
			next_retry_at  timestamptz,
			created_at     timestamptz NOT NULL DEFAULT now(),
			updated_at     timestamptz NOT NULL DEFAULT now(),
			processed_at   timestamptz
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status ON outbox_events (status, created_at)`,
	}
	for _, stmt := range stmts {
		if err := gormDB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
