package app

import (
	"os"
	"time"

	"marketflow/internal/employee"
	"marketflow/internal/office"
	"marketflow/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedMasterData installs the schedules, office geofence and bootstrap
// admin a fresh database needs before the console is usable. Every write
// is an upsert keyed on the natural key, so reruns are harmless.
func seedMasterData(gormDB *gorm.DB) error {
	schedules := []schedule.WorkSchedule{
		{ID: uuid.New(), RoleID: "superadmin", CheckInTime: "08:00", CheckOutTime: "17:00", GraceMinutes: 15, Active: true},
		{ID: uuid.New(), RoleID: "tim_packing", CheckInTime: "09:00", CheckOutTime: "18:00", GraceMinutes: 10, Active: true},
		{ID: uuid.New(), RoleID: "tim_marketplace", CheckInTime: "08:30", CheckOutTime: "17:30", GraceMinutes: 5, Active: true},
		{ID: uuid.New(), RoleID: "tim_konten", CheckInTime: "09:00", CheckOutTime: "17:00", GraceMinutes: 30, Active: true},
	}
	for _, s := range schedules {
		if err := gormDB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoNothing: true,
		}).Create(&s).Error; err != nil {
			return err
		}
	}

	officeCfg := office.Config{
		ID:                    1,
		Latitude:              -7.712094242672099,
		Longitude:             109.74015939318106,
		ToleranceRadiusMeters: 500,
		Label:                 "Grha Indonesia Organik",
	}
	if err := gormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&officeCfg).Error; err != nil {
		return err
	}

	return seedSuperadmin(gormDB)
}

func seedSuperadmin(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&employee.Employee{}).
		Where("role_id = ?", "superadmin").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("SEED_SUPERADMIN_PASSWORD")
	if password == "" {
		password = "superadmin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := employee.Employee{
		ID:             uuid.New(),
		EmployeeNumber: "EMP-000001",
		FullName:       "Super Admin",
		Username:       "superadmin",
		Password:       string(hashed),
		RoleID:         "superadmin",
		JoinDate:       time.Now().UTC(),
		Status:         employee.StatusActive,
	}
	if err := gormDB.Create(&admin).Error; err != nil {
		return err
	}

	// Reserve the seeded number so the counter hands out EMP-000002 next.
	if err := gormDB.Exec(
		`INSERT INTO sequence_counters (counter_type, last_value, updated_at)
		 VALUES ('employee_number', 1, now())
		 ON CONFLICT (counter_type) DO NOTHING`,
	).Error; err != nil {
		return err
	}

	zap.L().Info("superadmin account seeded", zap.String("username", admin.Username))
	return nil
}
