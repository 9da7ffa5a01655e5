package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultPixabayBaseURL = "https://pixabay.com/api/"

// PixabayService resolves a mood search query to an image URL. It is a
// best-effort enrichment: callers must treat any error as "no image", never
// as a reason to fail the write.
type PixabayService struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	apiKey      string
	baseURL     string
}

// NewPixabayService creates a Pixabay client.
// Kept under Pixabay's free-tier budget (100 requests per minute).
func NewPixabayService(apiKey string) *PixabayService {
	return &PixabayService{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		// ~60 requests per minute with a small burst
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		apiKey:      apiKey,
		baseURL:     defaultPixabayBaseURL,
	}
}

type pixabaySearchResponse struct {
	TotalHits int `json:"totalHits"`
	Hits      []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

// SearchImage returns the best image URL for a search query, or an error when
// the provider is unreachable, times out, or has no match.
func (s *PixabayService) SearchImage(ctx context.Context, query string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("pixabay API key not configured")
	}
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("q", query)
	params.Set("min_width", "1280")
	params.Set("min_height", "720")
	params.Set("image_type", "photo")
	params.Set("orientation", "horizontal")
	params.Set("category", "nature")
	params.Set("safesearch", "true")
	params.Set("per_page", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pixabay returned status %d", resp.StatusCode)
	}

	var result pixabaySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Hits) == 0 {
		return "", fmt.Errorf("no image found for %q", query)
	}

	return result.Hits[0].LargeImageURL, nil
}
