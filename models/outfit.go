package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"wardrobeapi/stylist"
)

type OutfitItems []stylist.OutfitItemRef

func (o *OutfitItems) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*o = nil
		return nil
	default:
		return errors.New("outfit items: unsupported column type")
	}
	return json.Unmarshal(raw, o)
}

func (o OutfitItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type SavedOutfit struct {
	JsonModel
	OwnerID     uint        `gorm:"index" json:"-"`
	Owner       UserAccount `json:"-"`
	Name        string      `json:"name"`
	Occasion    string      `json:"occasion"`
	OutfitItems OutfitItems `gorm:"type:jsonb" json:"outfit_items"`
	Description string      `gorm:"type:text" json:"description"`
	StylingTips string      `gorm:"type:text" json:"styling_tips"`
	Favorite    bool        `gorm:"default:false" json:"favorite"`
}

// Contains reports whether the outfit references the wardrobe item id.
func (s SavedOutfit) Contains(itemID string) bool {
	for _, ref := range s.OutfitItems {
		if string(ref.ID) == itemID {
			return true
		}
	}
	return false
}

type SavedOutfitIn struct {
	Name        string                  `json:"name"`
	Occasion    string                  `json:"occasion" validate:"required"`
	OutfitItems []stylist.OutfitItemRef `json:"outfit_items" validate:"required,min=1"`
	Description string                  `json:"description"`
	StylingTips string                  `json:"styling_tips"`
}

type OutfitIdIn struct {
	OutfitID uint `json:"outfit_id" validate:"required"`
}
