package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/stylist"
)

type OutfitController struct{}

func (controller *OutfitController) OutfitRoutes(g *echo.Group) {
	g.POST("/", controller.SaveOutfit)
	g.GET("/", controller.ListOutfits)
	g.POST("/delete", controller.DeleteOutfit)
	g.POST("/favorite", controller.ToggleFavorite)
}

func (controller *OutfitController) SaveOutfit(c echo.Context) error {
	var req models.SavedOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	occasion, ok := stylist.ParseOccasion(req.Occasion)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown occasion"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	seen := map[string]bool{}
	ids := make([]string, 0, len(req.OutfitItems))
	for _, ref := range req.OutfitItems {
		if !seen[string(ref.ID)] {
			seen[string(ref.ID)] = true
			ids = append(ids, string(ref.ID))
		}
	}
	var owned int64
	db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND id::text IN ?", user.ID, ids).Count(&owned)
	if int(owned) != len(ids) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Outfit references items that are not in your wardrobe"})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = string(occasion) + " outfit"
	}
	outfit := models.SavedOutfit{
		OwnerID:     user.ID,
		Name:        name,
		Occasion:    string(occasion),
		OutfitItems: models.OutfitItems(req.OutfitItems),
		Description: req.Description,
		StylingTips: req.StylingTips,
	}
	if err := db.Create(&outfit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save the outfit"})
	}
	return c.JSON(http.StatusCreated, outfit)
}

func (controller *OutfitController) ListOutfits(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("owner_id = ?", user.ID)
	if c.QueryParam("favorite") == "true" {
		query = query.Where("favorite = ?", true)
	}
	var outfits []models.SavedOutfit
	if err := query.Order("created_at desc").Find(&outfits).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your outfits"})
	}
	return c.JSON(http.StatusOK, outfits)
}

func findOwnedOutfit(db *gorm.DB, ownerID, outfitID uint) (*models.SavedOutfit, error) {
	var outfit models.SavedOutfit
	if err := db.Where("id = ? AND owner_id = ?", outfitID, ownerID).Take(&outfit).Error; err != nil {
		return nil, err
	}
	return &outfit, nil
}

func (controller *OutfitController) DeleteOutfit(c echo.Context) error {
	var req models.OutfitIdIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	outfit, err := findOwnedOutfit(db, user.ID, req.OutfitID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	if err := db.Delete(outfit).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete the outfit"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (controller *OutfitController) ToggleFavorite(c echo.Context) error {
	var req models.OutfitIdIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	outfit, err := findOwnedOutfit(db, user.ID, req.OutfitID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Outfit not found"})
	}
	outfit.Favorite = !outfit.Favorite
	if err := db.Model(outfit).Update("favorite", outfit.Favorite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update the outfit"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"outfit_id": outfit.ID, "favorite": outfit.Favorite})
}
