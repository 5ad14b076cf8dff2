package adoptionserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FavoritesLedger is the favorites service as seen by the transport.
type FavoritesLedger interface {
	List(ctx context.Context, userID string) ([]string, error)
	Contains(ctx context.Context, userID, petID string) (bool, error)
	Add(ctx context.Context, userID, petID string) (bool, error)
	Remove(ctx context.Context, userID, petID string) (bool, error)
}

// FavoriteAPI exposes the favorites ledger.
type FavoriteAPI struct {
	ledger FavoritesLedger
}

// NewFavoriteAPI creates a FavoriteAPI backed by ledger.
func NewFavoriteAPI(ledger FavoritesLedger) FavoriteAPI {
	return FavoriteAPI{ledger: ledger}
}

// Get /v1/favorites
// Favorite pet ids in the order they were added
func (api *FavoriteAPI) List(c *gin.Context) {
	ids, err := api.ledger.List(c.Request.Context(), currentPrincipal(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"petIds": ids})
}

// Get /v1/favorites/:petId
func (api *FavoriteAPI) Get(c *gin.Context) {
	petID, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	favorite, err := api.ledger.Contains(c.Request.Context(), currentPrincipal(c).UserID, petID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"petId": petID, "favorite": favorite})
}

// Put /v1/favorites/:petId
// Adding an existing favorite answers 200 with duplicate=true
func (api *FavoriteAPI) Add(c *gin.Context) {
	petID, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	added, err := api.ledger.Add(c.Request.Context(), currentPrincipal(c).UserID, petID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"petId": petID, "favorite": true, "duplicate": !added})
}

// Delete /v1/favorites/:petId
func (api *FavoriteAPI) Remove(c *gin.Context) {
	petID, ok := pathParam(c, "petId")
	if !ok {
		return
	}
	if _, err := api.ledger.Remove(c.Request.Context(), currentPrincipal(c).UserID, petID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
