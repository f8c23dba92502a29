package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

func TestPruner_PruneOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	now := time.Now()
	old := now.AddDate(0, 0, -60)

	// 过期已读：应被清理
	expired := testutil.TestNotification(t, db, user.ID, model.NotifySwapCompleted, testutil.WithNotifyRead(true))
	require.NoError(t, db.Model(&model.Notification{}).
		Where("id = ?", expired.ID).
		Update("created_at", old).Error)

	// 过期未读：保留
	unread := testutil.TestNotification(t, db, user.ID, model.NotifySwapCompleted)
	require.NoError(t, db.Model(&model.Notification{}).
		Where("id = ?", unread.ID).
		Update("created_at", old).Error)

	// 新已读：保留
	recent := testutil.TestNotification(t, db, user.ID, model.NotifySwapCompleted, testutil.WithNotifyRead(true))

	cfg := &config.Config{}
	cfg.Notification.RetentionDays = 30
	pruner := NewPruner(repository.NewNotificationRepository(db), cfg)

	rows, err := pruner.PruneOnce(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var remaining []*model.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []int64{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, unread.ID)
	assert.Contains(t, ids, recent.ID)
}

func TestNewPruner_DefaultRetention(t *testing.T) {
	pruner := NewPruner(nil, &config.Config{})
	assert.Equal(t, defaultRetentionDays, pruner.retentionDays)
}
