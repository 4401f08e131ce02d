package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
	"wardrobeapi/tasks"
)

type ClothesController struct {
	URLCache services.URLCacheServiceProvider
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.POST("/items", controller.CreateItem)
	g.GET("/items", controller.ListItems)
	g.GET("/items/all", controller.ListAllItems)
	g.POST("/items/favorite", controller.ToggleFavorite)
	g.GET("/items/in-outfits", controller.OutfitsWithItem)
	g.POST("/items/delete", controller.DeleteItem)
}

func (controller *ClothesController) withImageURLs(ctx context.Context, items []models.WardrobeItem) {
	if controller.URLCache == nil {
		return
	}
	for i := range items {
		url, err := controller.URLCache.GetReadURL(ctx, items[i].ImageKey)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Uint("item", items[i].ID).Msg("could not presign item image")
			continue
		}
		items[i].ImageURL = url
	}
}

func (controller *ClothesController) CreateItem(c echo.Context) error {
	var req models.WardrobeItemIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	itemType, err := stylist.NormalizeItemType(req.ItemType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	queue, _ := c.Get("__asynqclient").(tasks.Enqueuer)
	ctx := c.Request().Context()

	var occasions []string
	for _, name := range req.SuitableForOccasion {
		if o, ok := stylist.ParseOccasion(name); ok {
			occasions = append(occasions, string(o))
		}
	}
	item := models.WardrobeItem{
		OwnerID:             user.ID,
		ItemType:            string(itemType),
		Material:            req.Material,
		Color:               req.Color,
		Formality:           req.Formality,
		Pattern:             req.Pattern,
		Fit:                 req.Fit,
		SubType:             req.SubType,
		SuitableForWeather:  pq.StringArray(req.SuitableForWeather),
		SuitableForOccasion: pq.StringArray(occasions),
		ProcessingStatus:    models.ItemProcessing,
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save the item"})
	}

	if err := tasks.EnqueueItemProcessing(ctx, queue, item.ID); err != nil {
		// the stale item sweep picks it up later
		zerolog.Ctx(ctx).Error().Err(err).Uint("item", item.ID).Msg("failed to queue item processing")
		sentry.CaptureException(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (controller *ClothesController) ListItems(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("owner_id = ?", user.ID)
	if id := c.QueryParam("id"); id != "" {
		var item models.WardrobeItem
		r := query.Where("id = ?", id).Take(&item)
		if errors.Is(r.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
		}
		if r.Error != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
		}
		items := []models.WardrobeItem{item}
		controller.withImageURLs(c.Request().Context(), items)
		return c.JSON(http.StatusOK, items[0])
	}
	if raw := c.QueryParam("item_type"); raw != "" {
		itemType, err := stylist.NormalizeItemType(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		query = query.Where("item_type = ?", string(itemType))
	}

	var items []models.WardrobeItem
	if err := query.Order("created_at desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your wardrobe"})
	}
	controller.withImageURLs(c.Request().Context(), items)
	return c.JSON(http.StatusOK, items)
}

func (controller *ClothesController) ListAllItems(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your wardrobe"})
	}
	controller.withImageURLs(c.Request().Context(), items)
	return c.JSON(http.StatusOK, items)
}

func findOwnedItem(db *gorm.DB, ownerID, itemID uint) (*models.WardrobeItem, error) {
	var item models.WardrobeItem
	if err := db.Where("id = ? AND owner_id = ?", itemID, ownerID).Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (controller *ClothesController) ToggleFavorite(c echo.Context) error {
	var req models.ItemIdIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	item, err := findOwnedItem(db, user.ID, req.ItemID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	item.Favorite = !item.Favorite
	if err := db.Model(item).Update("favorite", item.Favorite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update the item"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"item_id": item.ID, "favorite": item.Favorite})
}

// outfitsContaining returns the saved outfits of the owner that reference the item.
func outfitsContaining(db *gorm.DB, ownerID, itemID uint) ([]models.SavedOutfit, error) {
	var outfits []models.SavedOutfit
	if err := db.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&outfits).Error; err != nil {
		return nil, err
	}
	id := UIntToStr(itemID)
	var out []models.SavedOutfit
	for _, o := range outfits {
		if o.Contains(id) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (controller *ClothesController) OutfitsWithItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.QueryParam("item_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "item_id is required"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	outfits, err := outfitsContaining(db, user.ID, uint(itemID))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your outfits"})
	}
	if outfits == nil {
		outfits = []models.SavedOutfit{}
	}
	return c.JSON(http.StatusOK, outfits)
}

// DeleteItem removes the item. Saved outfits using it are deleted with
// delete_outfits=true, otherwise the item is only dropped from them.
func (controller *ClothesController) DeleteItem(c echo.Context) error {
	var req models.ItemIdIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	deleteOutfits := c.QueryParam("delete_outfits") == "true"
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	item, err := findOwnedItem(db, user.ID, req.ItemID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found"})
	}
	outfits, err := outfitsContaining(db, user.ID, item.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your outfits"})
	}

	itemID := UIntToStr(item.ID)
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, outfit := range outfits {
			if deleteOutfits {
				if err := tx.Delete(&outfit).Error; err != nil {
					return err
				}
				continue
			}
			kept := models.OutfitItems{}
			for _, ref := range outfit.OutfitItems {
				if string(ref.ID) != itemID {
					kept = append(kept, ref)
				}
			}
			if err := tx.Model(&outfit).Update("outfit_items", kept).Error; err != nil {
				return err
			}
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete the item"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "deleted",
		"affected_outfits": len(outfits),
		"outfits_deleted":  deleteOutfits,
	})
}
