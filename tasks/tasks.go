package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
)

const (
	TypeProcessItem  = "wardrobe:process_item"
	TypeRequeueStale = "wardrobe:requeue_stale"

	QueueProcess = "process"
)

// items left in processing longer than this are handed to the queue again
const StaleAfter = 15 * time.Minute

type ItemProcessingPayload struct {
	ItemID uint `json:"item_id"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type IllustrationAssigner interface {
	Assign(ctx context.Context, db *gorm.DB, item *models.WardrobeItem) error
}

func NewItemProcessingTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ItemProcessingPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessItem, payload), nil
}

func NewRequeueStaleTask() *asynq.Task {
	return asynq.NewTask(TypeRequeueStale, nil)
}

// EnqueueItemProcessing queues the item once, a duplicate enqueue within the
// uniqueness window is not an error.
func EnqueueItemProcessing(ctx context.Context, client Enqueuer, itemID uint) error {
	if client == nil {
		return errors.New("task queue is not configured")
	}
	task, err := NewItemProcessingTask(itemID)
	if err != nil {
		return err
	}
	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue(QueueProcess),
		asynq.MaxRetry(models.MaxProcessRetries-1),
		asynq.Unique(StaleAfter),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

type ItemProcessor struct {
	DB          *gorm.DB
	Tagger      *stylist.ItemOccasionTagger
	Images      IllustrationAssigner
	FirebaseApp *firebase.App
	Queue       Enqueuer
	Metrics     *metrics.Registry
}

func (p *ItemProcessor) record(ctx context.Context, outcome string) {
	if p.Metrics != nil {
		p.Metrics.ItemProcessed(ctx, outcome)
	}
}

// ProcessItemTask tags a freshly added item with occasions, gives it an
// illustration and marks it ready for outfit generation.
func (p *ItemProcessor) ProcessItemTask(ctx context.Context, t *asynq.Task) error {
	var payload ItemProcessingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	logger := zerolog.Ctx(ctx).With().Uint("item", payload.ItemID).Logger()
	ctx = logger.WithContext(ctx)

	var item models.WardrobeItem
	result := p.DB.Where("id = ?", payload.ItemID).Take(&item)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		logger.Warn().Msg("item vanished before processing")
		return fmt.Errorf("item %d not found: %w", payload.ItemID, asynq.SkipRetry)
	}
	if result.Error != nil {
		return result.Error
	}
	if item.ProcessingStatus == models.ItemReady {
		return nil
	}

	if len(item.SuitableForOccasion) == 0 {
		tagged := p.Tagger.Tag(ctx, item.ToStylist())
		item.SuitableForOccasion = pq.StringArray(tagged.SuitableForOccasion)
	}

	if item.ImageKey == "" && p.Images != nil {
		if err := p.Images.Assign(ctx, p.DB, &item); err != nil {
			logger.Error().Err(err).Msg("illustration failed")
			sentry.CaptureException(fmt.Errorf("[Item: %v] illustration failed: %w", item.ID, err))
			if saveErr := saveItemProcessingFail(p.DB, item, err.Error(), true); saveErr != nil {
				return saveErr
			}
			p.record(ctx, "retry")
			return err
		}
	}

	item.ProcessingStatus = models.ItemReady
	item.ProcessErrorMessage = nil
	if tx := p.DB.Save(&item); tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] error on saving processed item: %w", item.ID, tx.Error))
		return tx.Error
	}
	p.record(ctx, models.ItemReady)
	logger.Info().Strs("occasions", item.SuitableForOccasion).Msg("item processed")

	services.SendNotification(p.FirebaseApp, p.DB, item.OwnerID,
		"Your wardrobe is updated",
		fmt.Sprintf("Your %s %s is ready to be styled", item.Color, item.SubType),
		map[string]string{"type": "item_ready", "item_id": fmt.Sprintf("%d", item.ID)},
	)
	return nil
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= models.MaxProcessRetries {
		item.ProcessingStatus = models.ItemFailed
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// RequeueStaleTask hands items stuck in processing back to the queue.
func (p *ItemProcessor) RequeueStaleTask(ctx context.Context, t *asynq.Task) error {
	logger := zerolog.Ctx(ctx)
	var items []models.WardrobeItem
	result := p.DB.Where(
		"processing_status = ? AND updated_at < ? AND process_retry_times < ?",
		models.ItemProcessing, time.Now().Add(-StaleAfter), models.MaxProcessRetries,
	).Find(&items)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Requeue] error fetching stale items: %w", result.Error))
		return result.Error
	}

	requeued := 0
	for _, item := range items {
		if err := EnqueueItemProcessing(ctx, p.Queue, item.ID); err != nil {
			logger.Error().Err(err).Uint("item", item.ID).Msg("requeue failed")
			continue
		}
		requeued++
	}
	logger.Info().Int("stale", len(items)).Int("requeued", requeued).Msg("stale items requeued")
	return nil
}
