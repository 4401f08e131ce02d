package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wardrobeapi/dbhelper"
	"wardrobeapi/metrics"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
	"wardrobeapi/test"
)

type testEnv struct {
	db        *gorm.DB
	sessions  *services.CacheSessionStore
	queue     *test.EnqueuerMock
	aws       *test.AWSProviderMock
	weather   *test.WeatherMock
	completer *test.FakeCompleter
	metrics   *metrics.Registry
}

func setupTestServer(t *testing.T) (*echo.Echo, *testEnv) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	cleaner()
	t.Cleanup(cleaner)

	sessions, err := services.NewCacheSessionStore(time.Hour)
	require.NoError(t, err)
	env := &testEnv{
		db:        db,
		sessions:  sessions,
		queue:     &test.EnqueuerMock{},
		aws:       &test.AWSProviderMock{},
		weather:   &test.WeatherMock{},
		completer: &test.FakeCompleter{Routes: test.ClassifierRoute(stylist.CasualOuting)},
		metrics:   metrics.NewRegistry(),
	}
	st := stylist.New(env.completer, stylist.DefaultRuleTable(), stylist.DefaultConfig(), stylist.WithObserver(env.metrics))
	e := SetupServer(ServerDeps{
		DB:         db,
		Google:     test.GoogleServiceMock{},
		AWSService: env.aws,
		Queue:      env.queue,
		URLCache:   test.URLCacheMock{},
		Sessions:   sessions,
		Weather:    env.weather,
		Stylist:    st,
		Metrics:    env.metrics,
		BucketName: "wardrobe-test",
	})
	return e, env
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
