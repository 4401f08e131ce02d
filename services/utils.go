package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"wardrobeapi/models"
)

type GoogleServiceProvider interface {
	ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

type GoogleService struct {
}

func (gs GoogleService) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{})
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

// SendNotification pushes a message to every active device of the user.
// A nil firebase app turns it into a no-op.
func SendNotification(fbApp *firebase.App, db *gorm.DB, userId uint, title string, message string, customData map[string]string) {
	if fbApp == nil {
		return
	}
	ctx := context.Background()
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("firebase messaging client unavailable, push aborted")
		return
	}
	var tokens []models.UserPushToken
	result := db.Model(models.UserPushToken{}).Where(
		"user_account_id = ? and active = true", userId,
	).Find(&tokens)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint("user", userId).Msg("failed to load push tokens")
		return
	}

	var iosCustomData map[string]interface{}
	if customData != nil {
		iosCustomData = stringMapToInterfaceMap(customData)
	}
	var messages []*messaging.Message
	for _, token := range tokens {
		messages = append(messages, &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  message,
			},
			APNS: &messaging.APNSConfig{
				FCMOptions: &messaging.APNSFCMOptions{
					AnalyticsLabel: "wardrobe",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert: &messaging.ApsAlert{
							Title: title,
							Body:  message,
						},
						Sound: "default",
					},
					CustomData: iosCustomData,
				},
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.AndroidNotificationPriority(messaging.PriorityMax),
					ChannelID: "wardrobe-high-priority",
				},
				Data: customData,
			},
			Token: token.Token,
		})
	}
	if len(messages) == 0 {
		return
	}

	br, err := client.SendEach(ctx, messages)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[User: %v] push failed: %w", userId, err))
		return
	}
	for i, resp := range br.Responses {
		if resp != nil && !resp.Success {
			log.Warn().Err(resp.Error).Uint("token", tokens[i].ID).Msg("push to device failed")
			if messaging.IsUnregistered(resp.Error) {
				db.Model(&tokens[i]).Update("active", false)
			}
		}
	}
	log.Info().Uint("user", userId).Int("failures", br.FailureCount).Msg("notifications sent")
}
