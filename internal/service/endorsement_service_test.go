package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

func setupEndorsementService(t *testing.T) (*EndorsementService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewEndorsementService(
		repository.NewEndorsementRepository(db),
		repository.NewSwapRepository(db),
		repository.NewUserRepository(db),
		nil,
		&config.Config{},
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestEndorsementService_Endorse(t *testing.T) {
	service, db, cleanup := setupEndorsementService(t)
	defer cleanup()

	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)
	testutil.TestSwap(t, db, userA.ID, userB.ID,
		testutil.WithSwapStatus(model.SwapStatusCompleted))

	item, err := service.Endorse(userA.ID, &dto.EndorseRequest{
		EndorseeID: userB.ID,
		Rating:     5,
		Comment:    "非常靠谱",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Rating)
	require.NotNil(t, item.Endorser)
	assert.Equal(t, userA.ID, item.Endorser.ID)
}

func TestEndorsementService_Endorse_RequiresCompletedSwap(t *testing.T) {
	service, db, cleanup := setupEndorsementService(t)
	defer cleanup()

	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)
	// 只有未完成的交换
	testutil.TestSwap(t, db, userA.ID, userB.ID,
		testutil.WithSwapStatus(model.SwapStatusAccepted))

	_, err := service.Endorse(userA.ID, &dto.EndorseRequest{
		EndorseeID: userB.ID,
		Rating:     4,
	})
	assert.ErrorIs(t, err, ErrEndorseNoSwap)
}

func TestEndorsementService_Endorse_OncePerDirection(t *testing.T) {
	service, db, cleanup := setupEndorsementService(t)
	defer cleanup()

	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)
	testutil.TestSwap(t, db, userA.ID, userB.ID,
		testutil.WithSwapStatus(model.SwapStatusCompleted))

	_, err := service.Endorse(userA.ID, &dto.EndorseRequest{EndorseeID: userB.ID, Rating: 5})
	require.NoError(t, err)

	_, err = service.Endorse(userA.ID, &dto.EndorseRequest{EndorseeID: userB.ID, Rating: 3})
	assert.ErrorIs(t, err, ErrEndorseDuplicate)

	// 反方向是独立的
	_, err = service.Endorse(userB.ID, &dto.EndorseRequest{EndorseeID: userA.ID, Rating: 4})
	assert.NoError(t, err)
}

func TestEndorsementService_Endorse_Self(t *testing.T) {
	service, db, cleanup := setupEndorsementService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.Endorse(user.ID, &dto.EndorseRequest{EndorseeID: user.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrEndorseSelf)
}

func TestEndorsementService_ListForUser(t *testing.T) {
	service, db, cleanup := setupEndorsementService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	rater1 := testutil.TestUser(t, db)
	rater2 := testutil.TestUser(t, db)
	testutil.TestEndorsement(t, db, rater1.ID, user.ID, 5)
	testutil.TestEndorsement(t, db, rater2.ID, user.ID, 3)

	items, total, err := service.ListForUser(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}
