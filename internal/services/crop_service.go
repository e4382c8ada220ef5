package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// coordinates of the supported regions.
type coordinates struct {
	Lat float64
	Lon float64
}

// cropConditions is a crop's optimal growing window.
type cropConditions struct {
	TempMin float64
	TempMax float64
	RainMin float64
	RainMax float64
}

var regionCoords = map[string]coordinates{
	"seoul":   {Lat: 37.5665, Lon: 126.9780},
	"busan":   {Lat: 35.1796, Lon: 129.0756},
	"daejeon": {Lat: 36.3504, Lon: 127.3845},
	"jeju":    {Lat: 33.4996, Lon: 126.5312},
}

var regionCrops = map[string]map[string]cropConditions{
	"seoul": {
		"rice":         {TempMin: 15, TempMax: 25, RainMin: 50, RainMax: 100},
		"sweet potato": {TempMin: 20, TempMax: 30, RainMin: 30, RainMax: 60},
	},
	"busan": {
		"strawberry": {TempMin: 10, TempMax: 20, RainMin: 40, RainMax: 80},
		"apple":      {TempMin: 18, TempMax: 28, RainMin: 60, RainMax: 120},
	},
	"daejeon": {
		"rice":  {TempMin: 15, TempMax: 25, RainMin: 50, RainMax: 100},
		"apple": {TempMin: 18, TempMax: 28, RainMin: 60, RainMax: 120},
	},
	"jeju": {
		"strawberry":   {TempMin: 10, TempMax: 20, RainMin: 40, RainMax: 80},
		"sweet potato": {TempMin: 20, TempMax: 30, RainMin: 30, RainMax: 60},
	},
}

// weather is the slice of the OpenWeatherMap response we care about.
type weather struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
}

// CropService recommends crops for a region from its current weather.
type CropService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewCropService creates a CropService talking to the weather API at baseURL.
func NewCropService(apiKey, baseURL string) *CropService {
	return &CropService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Recommend returns the crops whose optimal temperature and rainfall ranges
// contain the region's current readings. An empty slice means no crop fits
// right now.
func (s *CropService) Recommend(region string) ([]string, error) {
	coords, ok := regionCoords[region]
	if !ok {
		return nil, ErrUnknownRegion
	}

	w, err := s.fetchWeather(coords)
	if err != nil {
		log.Printf("Weather lookup failed for %s: %v", region, err)
		return nil, ErrWeatherUnavailable
	}

	rain := w.Rain.OneHour
	if rain == 0 {
		rain = w.Rain.ThreeHour
	}

	recommendations := []string{}
	for crop, cond := range regionCrops[region] {
		if w.Main.Temp >= cond.TempMin && w.Main.Temp <= cond.TempMax &&
			rain >= cond.RainMin && rain <= cond.RainMax {
			recommendations = append(recommendations, crop)
		}
	}
	return recommendations, nil
}

func (s *CropService) fetchWeather(c coordinates) (*weather, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", c.Lat))
	q.Set("lon", fmt.Sprintf("%f", c.Lon))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	resp, err := s.httpClient.Get(s.baseURL + "/data/2.5/weather?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var w weather
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	return &w, nil
}
