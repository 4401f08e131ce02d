package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"

	"wardrobeapi/stylist"
)

type UserPreference struct {
	JsonModel
	UserAccountID        uint           `gorm:"uniqueIndex" json:"-"`
	PreferredFit         string         `json:"preferred_fit"`
	PreferredColors      pq.StringArray `gorm:"type:text[]" json:"preferred_colors"`
	PreferredFormality   string         `json:"preferred_formality"`
	PreferredPatterns    pq.StringArray `gorm:"type:text[]" json:"preferred_patterns"`
	PreferredTemperature string         `json:"preferred_temperature"`
}

func (p *UserPreference) ToStylist() *stylist.Preferences {
	if p == nil {
		return nil
	}
	return &stylist.Preferences{
		Fit:         p.PreferredFit,
		Colors:      []string(p.PreferredColors),
		Formality:   p.PreferredFormality,
		Patterns:    []string(p.PreferredPatterns),
		Temperature: p.PreferredTemperature,
	}
}

// LoadPreferences returns nil when the user never saved any.
func LoadPreferences(db *gorm.DB, userID uint) *UserPreference {
	var pref UserPreference
	r := db.Where("user_account_id = ?", userID).Limit(1).Find(&pref)
	if r.Error != nil || r.RowsAffected == 0 {
		return nil
	}
	return &pref
}

type UserPreferenceIn struct {
	PreferredFit         string   `json:"preferred_fit"`
	PreferredColors      []string `json:"preferred_colors"`
	PreferredFormality   string   `json:"preferred_formality"`
	PreferredPatterns    []string `json:"preferred_patterns"`
	PreferredTemperature string   `json:"preferred_temperature"`
}
