package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model/dto"
	"github.com/servswap/servswap_go_server/internal/pkg/response"
	"github.com/servswap/servswap_go_server/internal/repository"
	"github.com/servswap/servswap_go_server/internal/service"
	"github.com/servswap/servswap_go_server/internal/testutil"
)

func setupListingHandler(t *testing.T) (*ListingHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	listingRepo := repository.NewListingRepository(db)

	cfg := &config.Config{}

	listingService := service.NewListingService(listingRepo, cfg)
	handler := NewListingHandler(listingService)

	ctx := &testContext{
		DB: db,
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, ctx, cleanup
}

func TestListingHandler_Create_Success(t *testing.T) {
	handler, ctx, cleanup := setupListingHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/listings", handler.Create)

	req := dto.CreateListingRequest{
		Title:    "吉他入门课",
		Category: "music",
	}

	w := performRequest(router, "POST", "/listings", req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "吉他入门课", data["title"])
	assert.True(t, data["active"].(bool))
}

func TestListingHandler_List_CategoryFilter(t *testing.T) {
	handler, ctx, cleanup := setupListingHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	testutil.TestListing(t, ctx.DB, user.ID, testutil.WithCategory("music"))
	testutil.TestListing(t, ctx.DB, user.ID, testutil.WithCategory("music"))
	testutil.TestListing(t, ctx.DB, user.ID, testutil.WithCategory("design"))

	router := gin.New()
	router.GET("/listings", handler.List)

	w := performRequest(router, "GET", "/listings?category=music", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}

func TestListingHandler_Get_NotFound(t *testing.T) {
	handler, _, cleanup := setupListingHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/listings/:id", handler.Get)

	w := performRequest(router, "GET", "/listings/99999", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestListingHandler_Update_OnlyOwner(t *testing.T) {
	handler, ctx, cleanup := setupListingHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, ctx.DB)
	other := testutil.TestUser(t, ctx.DB)
	listing := testutil.TestListing(t, ctx.DB, owner.ID)

	router := gin.New()
	router.Use(mockAuth(other.ID))
	router.PUT("/listings/:id", handler.Update)

	title := "改名"
	req := dto.UpdateListingRequest{Title: &title}

	w := performRequest(router, "PUT", fmt.Sprintf("/listings/%d", listing.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestListingHandler_Delete_Success(t *testing.T) {
	handler, ctx, cleanup := setupListingHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, ctx.DB)
	listing := testutil.TestListing(t, ctx.DB, owner.ID)

	router := gin.New()
	router.Use(mockAuth(owner.ID))
	router.DELETE("/listings/:id", handler.Delete)
	router.GET("/listings/:id", handler.Get)

	w := performRequest(router, "DELETE", fmt.Sprintf("/listings/%d", listing.ID), nil)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "GET", fmt.Sprintf("/listings/%d", listing.ID), nil)
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}
