package app

import (
	"database/sql"

	"marketflow/internal/attendance"
	"marketflow/internal/attendance/device"
	"marketflow/internal/auditlog"
	"marketflow/internal/auth"
	"marketflow/internal/employee"
	"marketflow/internal/leave"
	"marketflow/internal/messaging/kafka"
	"marketflow/internal/office"
	"marketflow/internal/reconcile"
	"marketflow/internal/schedule"
	"marketflow/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	scheduleRepo := schedule.NewRepository(gormDB)
	officeRepo := office.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Audit ledgers ---
	attendanceLedger := auditlog.NewLedger("attendance")
	contentLedger := auditlog.NewLedger("content")

	// --- Services ---
	authService := auth.NewService(employeeRepo)
	officeService := office.NewService(officeRepo)
	employeeService := employee.NewService(db, employeeRepo, scheduleRepo, counterRepo, rdb)
	leaveService := leave.NewService(db, leaveRepo, reconcile.New(attendanceRepo), outboxRepo, attendanceLedger, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo, employeeRepo, scheduleRepo, officeRepo, leaveService, attendanceLedger, rdb)

	// --- Capture session ---
	feed := device.NewFeed()
	var position attendance.PositionProvider = feed
	if kiosk, ok := device.StaticPositionFromEnv(); ok {
		position = kiosk
	}
	sessionManager := attendance.NewSessionManager(attendanceService, leaveService, position, feed)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	officeHandler := office.NewHandler(officeService)
	employeeHandler := employee.NewHandler(employeeService)
	attendanceHandler := attendance.NewHandler(attendanceService, sessionManager)
	leaveHandler := leave.NewHandler(leaveService)
	deviceHandler := device.NewHandler(feed)
	auditHandler := auditlog.NewHandler(attendanceLedger, contentLedger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		office.RegisterRoutes(api, officeHandler)
		employee.RegisterRoutes(api, employeeHandler)
		attendance.RegisterRoutes(api, attendanceHandler, rdb)
		device.RegisterRoutes(api, deviceHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
		auditlog.RegisterRoutes(api, auditHandler)
	}

	return nil
}
