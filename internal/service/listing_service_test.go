package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

func setupListingService(t *testing.T) (*ListingService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewListingService(repository.NewListingRepository(db), &config.Config{})

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, db, cleanup
}

func TestListingService_CreateAndGet(t *testing.T) {
	service, db, cleanup := setupListingService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	created, err := service.Create(user.ID, &dto.CreateListingRequest{
		Title:       "钢琴课",
		Category:    "education",
		Description: "每周一小时",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "钢琴课", got.Title)
	require.NotNil(t, got.Owner)
	assert.Equal(t, user.ID, got.Owner.ID)
}

func TestListingService_Get_NotFound(t *testing.T) {
	service, _, cleanup := setupListingService(t)
	defer cleanup()

	_, err := service.Get(99999)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListingService_List_Filters(t *testing.T) {
	service, db, cleanup := setupListingService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestListing(t, db, user.ID, testutil.WithCategory("education"))
	testutil.TestListing(t, db, user.ID, testutil.WithCategory("design"))
	testutil.TestListing(t, db, user.ID,
		testutil.WithCategory("design"), testutil.WithActive(false)) // 下架不可见

	items, total, err := service.List("design", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "design", items[0].Category)

	items, total, err = service.List("", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestListingService_Update_OnlyOwner(t *testing.T) {
	service, db, cleanup := setupListingService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	listing := testutil.TestListing(t, db, owner.ID)

	newTitle := "更新后的标题"
	_, err := service.Update(listing.ID, other.ID, &dto.UpdateListingRequest{Title: &newTitle})
	assert.ErrorIs(t, err, ErrListingPermission)

	updated, err := service.Update(listing.ID, owner.ID, &dto.UpdateListingRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
}

func TestListingService_Delete_OnlyOwner(t *testing.T) {
	service, db, cleanup := setupListingService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	listing := testutil.TestListing(t, db, owner.ID)

	err := service.Delete(listing.ID, other.ID)
	assert.ErrorIs(t, err, ErrListingPermission)

	err = service.Delete(listing.ID, owner.ID)
	require.NoError(t, err)

	_, err = service.Get(listing.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}
