package models

import (
	"strconv"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"wardrobeapi/stylist"
)

// processing lifecycle of a wardrobe item
const (
	ItemProcessing = "processing"
	ItemReady      = "ready"
	ItemFailed     = "failed"
)

const MaxProcessRetries = 3

type WardrobeItem struct {
	JsonModel
	OwnerID             uint           `gorm:"index" json:"-"`
	Owner               UserAccount    `json:"-"`
	ItemType            string         `json:"item_type"`
	Material            string         `json:"material"`
	Color               string         `json:"color"`
	Formality           string         `json:"formality"`
	Pattern             string         `json:"pattern"`
	Fit                 string         `json:"fit"`
	SubType             string         `json:"sub_type"`
	SuitableForWeather  pq.StringArray `gorm:"type:text[]" json:"suitable_for_weather"`
	SuitableForOccasion pq.StringArray `gorm:"type:text[]" json:"suitable_for_occasion"`
	Favorite            bool           `gorm:"default:false" json:"favorite"`
	// object key of the illustration in the bucket
	ImageKey            string  `json:"-"`
	ImageURL            string  `gorm:"-" json:"image_link"`
	ProcessingStatus    string  `gorm:"default:processing" json:"processing_status"`
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
}

func (w WardrobeItem) ToStylist() stylist.WardrobeItem {
	return stylist.WardrobeItem{
		ID:                  strconv.FormatUint(uint64(w.ID), 10),
		ItemType:            stylist.ItemType(w.ItemType),
		Material:            w.Material,
		Color:               w.Color,
		Formality:           w.Formality,
		Pattern:             w.Pattern,
		Fit:                 w.Fit,
		SuitableForWeather:  []string(w.SuitableForWeather),
		SuitableForOccasion: []string(w.SuitableForOccasion),
		SubType:             w.SubType,
		ImageLink:           w.ImageURL,
		Favorite:            w.Favorite,
	}
}

// Ref is how outfits point at the item.
func (w WardrobeItem) Ref() stylist.OutfitItemRef {
	return stylist.OutfitItemRef{
		ID:       stylist.ItemID(strconv.FormatUint(uint64(w.ID), 10)),
		SubType:  w.SubType,
		Color:    w.Color,
		ItemType: stylist.ItemType(w.ItemType),
	}
}

// ReadyWardrobe loads the items of the user that finished processing.
func ReadyWardrobe(db *gorm.DB, userID uint) ([]WardrobeItem, error) {
	var items []WardrobeItem
	err := db.Where("owner_id = ? AND processing_status = ?", userID, ItemReady).
		Order("created_at desc").Find(&items).Error
	return items, err
}

func ToStylistWardrobe(items []WardrobeItem) []stylist.WardrobeItem {
	out := make([]stylist.WardrobeItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToStylist())
	}
	return out
}

// ImageItem is a generated illustration shared by every item with the same look.
type ImageItem struct {
	JsonModel
	Material  string `gorm:"index:idx_image_look" json:"material"`
	Color     string `gorm:"index:idx_image_look" json:"color"`
	Pattern   string `gorm:"index:idx_image_look" json:"pattern"`
	SubType   string `gorm:"index:idx_image_look" json:"sub_type"`
	ObjectKey string `json:"object_key"`
}

type WardrobeItemIn struct {
	ItemType            string   `json:"item_type" validate:"required,itemtype"`
	Material            string   `json:"material" validate:"required"`
	Color               string   `json:"color" validate:"required"`
	Formality           string   `json:"formality"`
	Pattern             string   `json:"pattern"`
	Fit                 string   `json:"fit"`
	SubType             string   `json:"sub_type" validate:"required"`
	SuitableForWeather  []string `json:"suitable_for_weather"`
	SuitableForOccasion []string `json:"suitable_for_occasion"`
}

type ItemIdIn struct {
	ItemID uint `json:"item_id" validate:"required"`
}
