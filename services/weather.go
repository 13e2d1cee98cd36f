package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"weather-app-api/config"
	"weather-app-api/observability"
)

const owmBaseURL = "https://api.openweathermap.org/data/2.5"

// WeatherService fetches current conditions and forecasts from OpenWeather.
type WeatherService struct {
	client *resty.Client
	apiKey string
}

func NewWeatherService(cfg config.UpstreamConfig) *WeatherService {
	return &WeatherService{
		client: newRetryingClient(cfg.TimeoutSeconds),
		apiKey: cfg.OpenWeatherAPIKey,
	}
}

type WeatherLocation struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone *int    `json:"timezone,omitempty"`
}

type CurrentConditions struct {
	Temp        float64  `json:"temp"`
	FeelsLike   float64  `json:"feels_like"`
	Humidity    float64  `json:"humidity"`
	Pressure    float64  `json:"pressure"`
	WindSpeed   float64  `json:"wind_speed"`
	WindDeg     *float64 `json:"wind_deg"`
	Visibility  *float64 `json:"visibility"`
	Clouds      *float64 `json:"clouds"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Sunrise     int64    `json:"sunrise"`
	Sunset      int64    `json:"sunset"`
	Dt          int64    `json:"dt"`
}

type CurrentWeather struct {
	Source   string            `json:"source"`
	Location WeatherLocation   `json:"location"`
	Weather  CurrentConditions `json:"weather"`
}

type DailyForecast struct {
	Date        string   `json:"date"`
	Temp        float64  `json:"temp"`
	FeelsLike   float64  `json:"feels_like"`
	Humidity    float64  `json:"humidity"`
	Pressure    float64  `json:"pressure"`
	WindSpeed   float64  `json:"wind_speed"`
	Clouds      *float64 `json:"clouds"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

type Forecast struct {
	Source   string          `json:"source"`
	Location WeatherLocation `json:"location"`
	Forecast []DailyForecast `json:"forecast"`
}

type owmConditions struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmCurrentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []owmConditions `json:"weather"`
	Main    owmMain         `json:"main"`
	Wind    struct {
		Speed float64  `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Visibility *float64 `json:"visibility"`
	Clouds     struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type owmForecastEntry struct {
	DtTxt string  `json:"dt_txt"`
	Main  owmMain `json:"main"`
	Wind  struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Weather []owmConditions `json:"weather"`
}

type owmForecastResponse struct {
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Country  string `json:"country"`
		Timezone *int   `json:"timezone"`
	} `json:"city"`
	List []owmForecastEntry `json:"list"`
}

func (s *WeatherService) CurrentByCoords(ctx context.Context, lat, lon float64, units string) (*CurrentWeather, error) {
	var out owmCurrentResponse
	if err := s.get(ctx, "/weather", lat, lon, units, &out); err != nil {
		return nil, err
	}

	result := &CurrentWeather{
		Source: "openweathermap",
		Location: WeatherLocation{
			Name: joinLocationName(out.Name, out.Sys.Country),
			Lat:  out.Coord.Lat,
			Lon:  out.Coord.Lon,
		},
		Weather: CurrentConditions{
			Temp:       out.Main.Temp,
			FeelsLike:  out.Main.FeelsLike,
			Humidity:   out.Main.Humidity,
			Pressure:   out.Main.Pressure,
			WindSpeed:  out.Wind.Speed,
			WindDeg:    out.Wind.Deg,
			Visibility: out.Visibility,
			Clouds:     out.Clouds.All,
			Sunrise:    out.Sys.Sunrise,
			Sunset:     out.Sys.Sunset,
			Dt:         out.Dt,
		},
	}
	if len(out.Weather) > 0 {
		result.Weather.Condition = out.Weather[0].Main
		result.Weather.Description = out.Weather[0].Description
		result.Weather.Icon = out.Weather[0].Icon
	}
	return result, nil
}

// ForecastByCoords condenses OpenWeather's 5-day/3-hour feed into at most
// days daily summaries, picking the bucket closest to midday per date.
func (s *WeatherService) ForecastByCoords(ctx context.Context, lat, lon float64, units string, days int) (*Forecast, error) {
	if days < 1 || days > 5 {
		days = 5
	}

	var out owmForecastResponse
	if err := s.get(ctx, "/forecast", lat, lon, units, &out); err != nil {
		return nil, err
	}

	byDate := make(map[string][]owmForecastEntry)
	var dates []string
	for _, entry := range out.List {
		day, _, found := strings.Cut(entry.DtTxt, " ")
		if !found {
			continue
		}
		if _, seen := byDate[day]; !seen {
			dates = append(dates, day)
		}
		byDate[day] = append(byDate[day], entry)
	}
	if len(dates) > days {
		dates = dates[:days]
	}

	daily := make([]DailyForecast, 0, len(dates))
	for _, day := range dates {
		entry := middayEntry(byDate[day])
		forecast := DailyForecast{
			Date:      day,
			Temp:      entry.Main.Temp,
			FeelsLike: entry.Main.FeelsLike,
			Humidity:  entry.Main.Humidity,
			Pressure:  entry.Main.Pressure,
			WindSpeed: entry.Wind.Speed,
			Clouds:    entry.Clouds.All,
		}
		if len(entry.Weather) > 0 {
			forecast.Condition = entry.Weather[0].Main
			forecast.Description = entry.Weather[0].Description
			forecast.Icon = entry.Weather[0].Icon
		}
		daily = append(daily, forecast)
	}

	return &Forecast{
		Source: "openweathermap",
		Location: WeatherLocation{
			Name:     joinLocationName(out.City.Name, out.City.Country),
			Lat:      out.City.Coord.Lat,
			Lon:      out.City.Coord.Lon,
			Timezone: out.City.Timezone,
		},
		Forecast: daily,
	}, nil
}

func (s *WeatherService) get(ctx context.Context, path string, lat, lon float64, units string, out interface{}) error {
	if s.apiKey == "" {
		return fmt.Errorf("openweather: %w", ErrMissingAPIKey)
	}
	if units == "" {
		units = "metric"
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
			"appid": s.apiKey,
			"units": units,
		}).
		SetResult(out).
		Get(owmBaseURL + path)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues("openweather", "error").Inc()
		return fmt.Errorf("openweather request: %w", err)
	}
	if resp.IsError() {
		observability.UpstreamRequestsTotal.WithLabelValues("openweather", "error").Inc()
		return fmt.Errorf("openweather returned status %d", resp.StatusCode())
	}
	observability.UpstreamRequestsTotal.WithLabelValues("openweather", "success").Inc()
	return nil
}

// middayEntry picks the bucket whose hour is closest to 12:00.
func middayEntry(entries []owmForecastEntry) owmForecastEntry {
	best := entries[0]
	bestDist := middayDistance(best.DtTxt)
	for _, entry := range entries[1:] {
		if d := middayDistance(entry.DtTxt); d < bestDist {
			best, bestDist = entry, d
		}
	}
	return best
}

func middayDistance(dtTxt string) int {
	_, clock, found := strings.Cut(dtTxt, " ")
	if !found || len(clock) < 2 {
		return 24
	}
	hour, err := strconv.Atoi(clock[:2])
	if err != nil {
		return 24
	}
	if hour > 12 {
		return hour - 12
	}
	return 12 - hour
}

func joinLocationName(name, country string) string {
	parts := make([]string, 0, 2)
	if name != "" {
		parts = append(parts, name)
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}
