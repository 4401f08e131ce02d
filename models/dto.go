package models

import "wardrobeapi/stylist"

type ChatIn struct {
	UserMessage string                   `json:"user_message" validate:"required"`
	Weather     *stylist.WeatherSnapshot `json:"weather"`
	City        string                   `json:"city"`
}

type ChatOut struct {
	Response *stylist.OutfitCandidate `json:"response"`
}

type ProfileImageIn struct {
	FileName string `json:"file_name"`
	Remove   bool   `json:"remove"`
}

type ProfileImageOut struct {
	UploadUrl string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}
