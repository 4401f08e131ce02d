package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/stylist"
)

func TestFullKeyIsDeterministic(t *testing.T) {
	a := fullKey("x", map[string]string{"b": "2", "a": "1"})
	b := fullKey("x", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, "x{a=1,b=2}", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "x", fullKey("x", nil))
}

func TestIncIsConcurrencySafe(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(context.Background(), "hits", map[string]string{"k": "v"}, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), reg.SnapshotJSON()["hits{k=v}"])
}

func TestOutfitGeneratedObserver(t *testing.T) {
	reg := NewRegistry()
	var observer stylist.Observer = reg
	ctx := context.Background()

	observer.OutfitGenerated(ctx, stylist.Wedding, stylist.OutcomeRepaired)
	observer.OutfitGenerated(ctx, stylist.Wedding, stylist.OutcomeRetried)
	observer.OutfitGenerated(ctx, stylist.Gym, stylist.OutcomeValid)
	reg.ItemProcessed(ctx, "ready")

	snap := reg.SnapshotJSON()
	assert.Equal(t, int64(1), snap["outfit_generations_total{occasion=wedding,outcome=repaired}"])
	assert.Equal(t, int64(1), snap["outfit_generations_total{occasion=gym,outcome=valid}"])
	assert.Equal(t, int64(1), snap["outfit_repairs_total"])
	assert.Equal(t, int64(1), snap["outfit_retries_total"])
	assert.Equal(t, int64(1), snap["item_processing_total{outcome=ready}"])
}

func TestEchoHandlers(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(context.Background(), "b", nil, 1)
	reg.Inc(context.Background(), "a", nil, 3)

	e := echo.New()
	e.GET("/metrics", reg.EchoHandlerText)
	e.GET("/metrics.json", reg.EchoHandlerJSON)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a 3\nb 1\n", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics.json", nil))
	assert.JSONEq(t, `{"a":3,"b":1}`, rec.Body.String())
}
