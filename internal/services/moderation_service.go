package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxReportMessage = 1000

type ModerationService struct {
	db *gorm.DB
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// CreateReport files a report against a post, article or review. A reporter
// may report each target once.
func (s *ModerationService) CreateReport(ctx context.Context, reporterID string, req *dto.CreateReportRequest) (*models.Report, error) {
	t, err := target.Parse(req.TargetType, req.TargetID, target.ContentKinds)
	if err != nil {
		return nil, categorize(err)
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, invalid("message is required")
	}
	if utf8.RuneCountInString(msg) > maxReportMessage {
		return nil, invalid("message exceeds %d characters", maxReportMessage)
	}
	r, err := target.Resolve(ctx, s.db, t)
	if err != nil {
		return nil, categorize(err)
	}
	if err := target.CheckVisible(ctx, s.db, r, reporterID); err != nil {
		return nil, categorize(err)
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: string(t.Kind),
		TargetID:   t.ID,
		Message:    msg,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reporter_id"}, {Name: "target_type"}, {Name: "target_id"}},
		DoNothing: true,
	}).Create(report)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflict("you have already reported this %s", t.Kind)
	}
	return report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ResolveReport records the resolution and then deletes the pending report,
// in one transaction. The completed row reuses the report id, so a retry
// after a partial failure neither loses nor duplicates it.
func (s *ModerationService) ResolveReport(ctx context.Context, adminID string, isAdmin bool, reportID string, req *dto.ResolveReportRequest) (*models.CompletedReport, error) {
	if !isAdmin {
		return nil, forbidden("admin access required")
	}

	var done models.CompletedReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("report")
			}
			return err
		}

		done = models.CompletedReport{
			ID:         report.ID,
			ReporterID: report.ReporterID,
			TargetType: report.TargetType,
			TargetID:   report.TargetID,
			Message:    report.Message,
			ReportedAt: report.CreatedAt,
			ResolvedBy: adminID,
			Resolution: strings.TrimSpace(req.Resolution),
			ResolvedAt: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&done).Error; err != nil {
			return err
		}
		// A retried resolution keeps the first stored outcome.
		if err := tx.First(&done, "id = ?", report.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, "id = ?", report.ID).Error
	})
	if err != nil {
		return nil, categorize(err)
	}
	return &done, nil
}

func (s *ModerationService) CompletedReports(ctx context.Context, limit, offset int) ([]models.CompletedReport, error) {
	var out []models.CompletedReport
	err := s.db.WithContext(ctx).Order("resolved_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}
