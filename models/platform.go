package models

import (
	"regexp"

	"github.com/go-playground/validator"

	"wardrobeapi/stylist"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

var platformPattern = regexp.MustCompile("^(ios|android|web)$")

func (l *Platform) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = Platform(v)
	case []byte:
		*l = Platform(v)
	}
	return nil
}

func (l Platform) Value() string {
	return string(l)
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return platformPattern.MatchString(fl.Field().String())
}

func ValidatePlatformRaw(value string) bool {
	return platformPattern.MatchString(value)
}

// ValidateItemType accepts anything NormalizeItemType can resolve.
func ValidateItemType(fl validator.FieldLevel) bool {
	_, err := stylist.NormalizeItemType(fl.Field().String())
	return err == nil
}
