package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Membership{},
		&models.HourLog{},
		&models.VolunteerAssignment{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Announcement{},
		&models.PaymentRecord{},
		&models.ActivityLog{},
		&models.FeatureFlag{},
	))
	return db
}
