package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"wardrobeapi/stylist"
)

var ErrWeatherUnavailable = errors.New("weather service unavailable")

const weatherCacheTTL = 10 * time.Minute

type WeatherProvider interface {
	Current(ctx context.Context, city string) (stylist.WeatherSnapshot, error)
}

// forecast.json payload of weatherapi.com, only the fields we read
type weatherAPIResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		Humidity   float64 `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		UV         float64 `json:"uv"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				MaxTempC float64 `json:"maxtemp_c"`
				MinTempC float64 `json:"mintemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (r weatherAPIResponse) snapshot() stylist.WeatherSnapshot {
	w := stylist.WeatherSnapshot{
		Temperature: r.Current.TempC,
		FeelsLike:   r.Current.FeelsLikeC,
		Description: r.Current.Condition.Text,
		Humidity:    r.Current.Humidity,
		WindSpeed:   r.Current.WindKph,
		UVIndex:     r.Current.UV,
	}
	if len(r.Forecast.ForecastDay) > 0 {
		w.ForecastHigh = r.Forecast.ForecastDay[0].Day.MaxTempC
		w.ForecastLow = r.Forecast.ForecastDay[0].Day.MinTempC
	}
	return w
}

type WeatherService struct {
	baseURL     string
	apiKey      string
	defaultCity string
	httpClient  *http.Client
	cache       *cache.LoadableCache[stylist.WeatherSnapshot]
}

func NewWeatherService(baseURL, apiKey, defaultCity string) (*WeatherService, error) {
	ristrettoCache, err := newRistrettoCache()
	if err != nil {
		return nil, err
	}
	s := &WeatherService{
		baseURL:     baseURL,
		apiKey:      apiKey,
		defaultCity: defaultCity,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	load := func(ctx context.Context, key any) (stylist.WeatherSnapshot, []store.Option, error) {
		city, ok := key.(string)
		if !ok {
			return stylist.WeatherSnapshot{}, nil, fmt.Errorf("invalid weather cache key %T", key)
		}
		w, err := s.fetch(ctx, city)
		return w, []store.Option{store.WithExpiration(weatherCacheTTL)}, err
	}
	s.cache = cache.NewLoadable[stylist.WeatherSnapshot](load, cache.New[stylist.WeatherSnapshot](ristretto_store.NewRistretto(ristrettoCache)))
	return s, nil
}

func (s *WeatherService) Current(ctx context.Context, city string) (stylist.WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = s.defaultCity
	}
	if s.baseURL == "" || s.apiKey == "" {
		return stylist.WeatherSnapshot{}, fmt.Errorf("%w: not configured", ErrWeatherUnavailable)
	}
	return s.cache.Get(ctx, strings.ToLower(city))
}

func (s *WeatherService) fetch(ctx context.Context, city string) (stylist.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("key", s.apiKey)
	query.Set("q", city)
	query.Set("days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return stylist.WeatherSnapshot{}, fmt.Errorf("failed to create weather request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return stylist.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return stylist.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return stylist.WeatherSnapshot{}, fmt.Errorf("%w: status %d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var parsed weatherAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return stylist.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	return parsed.snapshot(), nil
}
