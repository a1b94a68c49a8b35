package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGHandlerStoresErrors(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewPGHandler(db, time.Hour)
	t.Cleanup(h.Stop)

	logger := slog.New(NewMultiHandler(slog.NewJSONHandler(&discard{}, nil), h)).With("request_id", "req-1")
	logger.Info("ignored")
	logger.Error("sync failed", "error", "boom", "user_id", "u1", "game", "hades")
	require.Equal(t, 1, h.pending())

	h.flush()
	assert.Equal(t, 0, h.pending())

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "sync failed", row.Message)
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, "boom", row.Error)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u1", *row.UserID)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(row.Extra, &extra))
	assert.Equal(t, "hades", extra["game"])
}

func TestPurgeSystemLogs(t *testing.T) {
	db := testutil.NewDB(t)
	old := models.SystemLog{ID: "old", Level: "ERROR", Timestamp: testutil.At(-60), CreatedAt: testutil.At(-60)}
	fresh := models.SystemLog{ID: "fresh", Level: "ERROR", Timestamp: testutil.At(0), CreatedAt: testutil.At(0)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	n, err := PurgeSystemLogs(context.Background(), db, testutil.At(-30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
