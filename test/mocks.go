package test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hibiken/asynq"

	"wardrobeapi/stylist"
)

type AWSProviderMock struct {
	MockUrl string

	mu      sync.Mutex
	Uploads map[string][]byte
	Deleted []string
}

func (awsService *AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService *AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s?signed", fileKey), nil
}

func (awsService *AWSProviderMock) PutObject(ctx context.Context, bucketName, key string, body []byte, contentType string) error {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	if awsService.Uploads == nil {
		awsService.Uploads = map[string][]byte{}
	}
	awsService.Uploads[key] = body
	return nil
}

func (awsService *AWSProviderMock) DeleteObject(ctx context.Context, bucketName, key string) error {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	awsService.Deleted = append(awsService.Deleted, key)
	return nil
}

type URLCacheMock struct{}

func (URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return "https://cdn.example.com/" + objectKey, nil
}

type reply struct {
	text string
	err  error
}

// FakeCompleter answers prompts with queued replies. Prompts containing
// one of the Routes keys are answered by that route instead, which keeps
// classifier and tagger calls out of the queue.
type FakeCompleter struct {
	mu      sync.Mutex
	replies []reply
	Routes  map[string]string
	Prompts []string
}

func (f *FakeCompleter) Push(text string) *FakeCompleter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{text: text})
	return f
}

func (f *FakeCompleter) Fail(err error) *FakeCompleter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{err: err})
	return f
}

func (f *FakeCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	for key, answer := range f.Routes {
		if strings.Contains(prompt, key) {
			return answer, nil
		}
	}
	if len(f.replies) == 0 {
		return "", errors.New("no fake reply left")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

var _ stylist.Completer = (*FakeCompleter)(nil)

// ClassifierRoute answers the occasion classifier prompt.
func ClassifierRoute(occasion stylist.Occasion) map[string]string {
	return map[string]string{"Classify the occasion": string(occasion)}
}

type EnqueuerMock struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (m *EnqueuerMock) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(m.Tasks)), Type: task.Type()}, nil
}

func (m *EnqueuerMock) Count(taskType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.Tasks {
		if t.Type() == taskType {
			n++
		}
	}
	return n
}

type WeatherMock struct {
	Snapshot stylist.WeatherSnapshot
	Err      error
	Cities   []string
}

func (w *WeatherMock) Current(ctx context.Context, city string) (stylist.WeatherSnapshot, error) {
	w.Cities = append(w.Cities, city)
	return w.Snapshot, w.Err
}
