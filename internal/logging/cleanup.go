package logging

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"gorm.io/gorm"
)

// PurgeSystemLogs deletes system_logs written before cutoff and returns how
// many rows went.
func PurgeSystemLogs(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}
