package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"weather-app-api/config"
	"weather-app-api/observability"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// Video is a simplified YouTube search result.
type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	URL          string `json:"url"`
	PublishedAt  string `json:"publishedAt"`
	ChannelTitle string `json:"channelTitle"`
}

// YouTubeService searches videos through the Data API v3. Searches are not
// retried; a failed search simply fails.
type YouTubeService struct {
	client *resty.Client
	apiKey string
}

func NewYouTubeService(cfg config.UpstreamConfig) *YouTubeService {
	return &YouTubeService{
		client: newUpstreamClient(cfg.TimeoutSeconds),
		apiKey: cfg.YouTubeAPIKey,
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
			PublishedAt  string `json:"publishedAt"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (s *YouTubeService) Search(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("youtube: %w", ErrMissingAPIKey)
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 25 {
		maxResults = 25
	}

	var out youtubeSearchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":        s.apiKey,
			"part":       "snippet",
			"q":          query,
			"type":       "video",
			"maxResults": strconv.Itoa(maxResults),
			"safeSearch": "moderate",
			"order":      "relevance",
		}).
		SetResult(&out).
		Get(youtubeSearchURL)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues("youtube", "error").Inc()
		return nil, fmt.Errorf("youtube request: %w", err)
	}
	if resp.IsError() {
		observability.UpstreamRequestsTotal.WithLabelValues("youtube", "error").Inc()
		return nil, fmt.Errorf("youtube returned status %d", resp.StatusCode())
	}
	observability.UpstreamRequestsTotal.WithLabelValues("youtube", "success").Inc()

	videos := make([]Video, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}
		videos = append(videos, Video{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    thumbnail,
			URL:          "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			PublishedAt:  item.Snippet.PublishedAt,
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}
	return videos, nil
}
