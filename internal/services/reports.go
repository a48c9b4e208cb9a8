package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"askboard/internal/logctx"
	"askboard/internal/models"

	"gorm.io/gorm"
)

const maxReasonLen = 500

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Create files a report. The target is not checked for existence: content
// may already be gone by the time an admin reads the report.
func (s *ReportService) Create(ctx context.Context, actor Actor, targetType, targetID, reason string) (*models.Report, error) {
	const op = "services.reports.Create"

	if err := authorize(op, actor, Resource{Kind: resourceReport}, ActionCreate); err != nil {
		return nil, err
	}

	switch targetType {
	case models.ReportTargetQuestion, models.ReportTargetReply, models.ReportTargetUser:
	default:
		return nil, fail(op, ErrInvalidArgument, "target type must be question, reply or user")
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, fail(op, ErrInvalidArgument, "target id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fail(op, ErrInvalidArgument, "reason is required")
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		return nil, fail(op, ErrInvalidArgument, "reason is too long")
	}

	report := models.Report{
		UserID:     actor.ID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, storeError(op, err)
	}

	logctx.From(ctx).Info("report_created",
		slog.String("op", op),
		slog.String("report_id", report.ID),
		slog.String("target_type", targetType),
	)
	return &report, nil
}
