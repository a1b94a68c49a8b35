package models

import (
	"time"
)

// Report is a pending moderation report. On resolution it is copied to
// CompletedReport and then deleted.
type Report struct {
	ID         string    `gorm:"size:64;primaryKey" json:"id"`
	ReporterID string    `gorm:"size:64;not null;uniqueIndex:idx_reports_reporter_target,priority:1" json:"reporter_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:idx_reports_reporter_target,priority:2" json:"target_type"`
	TargetID   string    `gorm:"size:64;not null;uniqueIndex:idx_reports_reporter_target,priority:3;index" json:"target_id"`
	Message    string    `gorm:"size:1000;not null" json:"message"`
	LegacyID   *string   `gorm:"size:64;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

type CompletedReport struct {
	ID         string    `gorm:"size:64;primaryKey" json:"id"`
	ReporterID string    `gorm:"size:64;not null;index" json:"reporter_id"`
	TargetType string    `gorm:"size:20;not null" json:"target_type"`
	TargetID   string    `gorm:"size:64;not null" json:"target_id"`
	Message    string    `gorm:"size:1000" json:"message"`
	ReportedAt time.Time `json:"reported_at"`
	ResolvedBy string    `gorm:"size:64;not null" json:"resolved_by"`
	Resolution string    `gorm:"size:1000" json:"resolution,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}
