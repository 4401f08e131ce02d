package models

type UserAccount struct {
	JsonModel
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Username  string   `json:"username"`
	Email     string   `json:"email" gorm:"unique"`
	Gender    string   `json:"gender"`
	Banned    bool     `gorm:"default:false" json:"-"`
	LastIp    string   `json:"-"`
	GoogleID  string   `json:"-"`
	AppleID   string   `json:"-"`
	Platform  Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	// city used for weather lookups when the request names none
	City             string `json:"city"`
	TelegramUsername string `json:"telegram_username"`
	ProfileImageKey  string `json:"-"`

	ReceiveNotifications bool `gorm:"default:true" json:"receive_notifications"`
}

func (u UserAccount) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type ProfileUpdateIn struct {
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	Username             *string `json:"username"`
	Gender               *string `json:"gender"`
	City                 *string `json:"city"`
	TelegramUsername     *string `json:"telegram_username"`
	ReceiveNotifications *bool   `json:"receive_notifications"`
}

type UserMeOut struct {
	Id                   uint   `json:"id"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Gender               string `json:"gender"`
	City                 string `json:"city"`
	TelegramUsername     string `json:"telegram_username"`
	ProfileImageURL      string `json:"profile_image_url"`
	ReceiveNotifications bool   `json:"receive_notifications"`
	WardrobeSize         int64  `json:"wardrobe_size"`
}
