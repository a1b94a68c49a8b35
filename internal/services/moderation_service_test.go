package services_test

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewModerationService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "spam", testutil.At(0))

	report, err := svc.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "post", TargetID: post.ID, Message: "this is spam",
	})
	require.NoError(t, err)

	_, err = svc.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "post", TargetID: post.ID, Message: "again",
	})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = svc.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "comment", TargetID: post.ID, Message: "wrong kind",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "post", TargetID: "missing", Message: "gone",
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	pending, total, err := svc.ListReports(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)

	_, err = svc.ResolveReport(ctx, bob.ID, false, report.ID, &dto.ResolveReportRequest{Resolution: "nope"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	done, err := svc.ResolveReport(ctx, alice.ID, true, report.ID, &dto.ResolveReportRequest{Resolution: " removed "})
	require.NoError(t, err)
	assert.Equal(t, report.ID, done.ID)
	assert.Equal(t, "removed", done.Resolution)
	assert.Equal(t, alice.ID, done.ResolvedBy)

	assert.Equal(t, int64(0), count(t, db, &models.Report{}))
	assert.Equal(t, int64(1), count(t, db, &models.CompletedReport{}))

	_, err = svc.ResolveReport(ctx, alice.ID, true, report.ID, &dto.ResolveReportRequest{})
	assert.ErrorIs(t, err, services.ErrNotFound)

	completed, err := svc.CompletedReports(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, completed, 1)
}

func TestResolveReportRetryReturnsStoredOutcome(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := services.NewModerationService(db)

	admin := testutil.CreateUser(t, db, "admin")
	other := testutil.CreateUser(t, db, "other")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, other.ID, "spam", testutil.At(0))

	report, err := svc.CreateReport(ctx, bob.ID, &dto.CreateReportRequest{
		TargetType: "post", TargetID: post.ID, Message: "spam",
	})
	require.NoError(t, err)

	// A previous attempt stored its outcome but left the report pending.
	first := &models.CompletedReport{
		ID:         report.ID,
		ReporterID: report.ReporterID,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Message:    report.Message,
		ReportedAt: report.CreatedAt,
		ResolvedBy: admin.ID,
		Resolution: "removed",
		ResolvedAt: testutil.At(5),
	}
	require.NoError(t, db.Create(first).Error)

	done, err := svc.ResolveReport(ctx, other.ID, true, report.ID, &dto.ResolveReportRequest{Resolution: "kept"})
	require.NoError(t, err)
	assert.Equal(t, "removed", done.Resolution)
	assert.Equal(t, admin.ID, done.ResolvedBy)
	assert.True(t, done.ResolvedAt.Equal(testutil.At(5)))

	assert.Equal(t, int64(0), count(t, db, &models.Report{}))
	assert.Equal(t, int64(1), count(t, db, &models.CompletedReport{}))
}
