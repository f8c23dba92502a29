package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

func TestSwapRepository_TransitionStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)
	swap := testutil.TestSwap(t, db, provider.ID, receiver.ID)

	rows, err := repo.TransitionStatus(swap.ID, model.SwapStatusPending, model.SwapStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// 前置状态不匹配时不迁移
	rows, err = repo.TransitionStatus(swap.ID, model.SwapStatusPending, model.SwapStatusDeclined)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	got, err := repo.GetByID(swap.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapStatusAccepted, got.Status)
}

func TestSwapRepository_TransitionStatus_TerminalGuard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)

	for _, terminal := range []string{
		model.SwapStatusCompleted,
		model.SwapStatusDeclined,
		model.SwapStatusCancelled,
	} {
		swap := testutil.TestSwap(t, db, provider.ID, receiver.ID,
			testutil.WithSwapStatus(terminal))

		rows, err := repo.TransitionStatus(swap.ID, model.SwapStatusPending, model.SwapStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows, "terminal status %s must not transition", terminal)

		got, err := repo.GetByID(swap.ID)
		require.NoError(t, err)
		assert.Equal(t, terminal, got.Status)
	}
}

func TestSwapRepository_MarkComplete_FirstParty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)
	swap := testutil.TestSwap(t, db, provider.ID, receiver.ID,
		testutil.WithSwapStatus(model.SwapStatusAccepted))

	rows, err := repo.MarkComplete(swap.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := repo.GetByID(swap.ID)
	require.NoError(t, err)
	assert.True(t, got.ProviderMarkedComplete)
	assert.False(t, got.ReceiverMarkedComplete)
	// 对方未标记，状态保持 accepted
	assert.Equal(t, model.SwapStatusAccepted, got.Status)
}

func TestSwapRepository_MarkComplete_QuorumCompletes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)
	swap := testutil.TestSwap(t, db, provider.ID, receiver.ID,
		testutil.WithSwapStatus(model.SwapStatusAccepted),
		testutil.WithMarkedComplete(true, false))

	rows, err := repo.MarkComplete(swap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := repo.GetByID(swap.ID)
	require.NoError(t, err)
	assert.True(t, got.ProviderMarkedComplete)
	assert.True(t, got.ReceiverMarkedComplete)
	assert.Equal(t, model.SwapStatusCompleted, got.Status)
}

func TestSwapRepository_MarkComplete_RequiresAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)
	swap := testutil.TestSwap(t, db, provider.ID, receiver.ID)

	rows, err := repo.MarkComplete(swap.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

// 双方并发标记完成：标志位更新与配额判定在一条条件 UPDATE 内完成，
// 不会出现两个标志都为真但状态停留在 accepted 的情况
func TestSwapRepository_MarkComplete_ConcurrentQuorum(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// 内存模式下每个连接是独立数据库，收紧连接池保证共享同一实例
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewSwapRepository(db)
	provider := testutil.TestUser(t, db)
	receiver := testutil.TestUser(t, db)
	swap := testutil.TestSwap(t, db, provider.ID, receiver.ID,
		testutil.WithSwapStatus(model.SwapStatusAccepted))

	var wg sync.WaitGroup
	for _, asProvider := range []bool{true, false} {
		wg.Add(1)
		go func(asProvider bool) {
			defer wg.Done()
			// SQLite 写锁下可能返回 busy，重试直到写入成功
			for {
				if _, err := repo.MarkComplete(swap.ID, asProvider); err == nil {
					return
				}
			}
		}(asProvider)
	}
	wg.Wait()

	got, err := repo.GetByID(swap.ID)
	require.NoError(t, err)
	assert.True(t, got.ProviderMarkedComplete)
	assert.True(t, got.ReceiverMarkedComplete)
	assert.Equal(t, model.SwapStatusCompleted, got.Status)
}

func TestSwapRepository_ListByParticipant_Order(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)

	first := testutil.TestSwap(t, db, userA.ID, userB.ID)
	second := testutil.TestSwap(t, db, userB.ID, userA.ID)

	// 旧交换被更新后，收件箱排序（updated_at）应排在前面
	require.NoError(t, db.Model(&model.Swap{}).Where("id = ?", first.ID).
		Update("status", model.SwapStatusAccepted).Error)

	swaps, total, err := repo.ListByParticipant(userA.ID, 1, 10, "updated_at")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, swaps, 2)
	assert.Equal(t, first.ID, swaps[0].ID)

	swaps, _, err = repo.ListByParticipant(userA.ID, 1, 10, "created_at")
	require.NoError(t, err)
	require.Len(t, swaps, 2)
	assert.Equal(t, second.ID, swaps[0].ID)
}

func TestSwapRepository_CountCompletedBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSwapRepository(db)
	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)
	userC := testutil.TestUser(t, db)

	testutil.TestSwap(t, db, userA.ID, userB.ID, testutil.WithSwapStatus(model.SwapStatusCompleted))
	testutil.TestSwap(t, db, userB.ID, userA.ID, testutil.WithSwapStatus(model.SwapStatusCompleted))
	testutil.TestSwap(t, db, userA.ID, userB.ID) // pending 不计入
	testutil.TestSwap(t, db, userA.ID, userC.ID, testutil.WithSwapStatus(model.SwapStatusCompleted))

	count, err := repo.CountCompletedBetween(userA.ID, userB.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
