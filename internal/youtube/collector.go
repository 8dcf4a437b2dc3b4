// Package youtube collects the videos of one channel through the YouTube
// Data API v3.
package youtube

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"horse.fit/topicsearch/internal/topic"
)

const (
	pageSize                 = 50
	watchURLPrefix           = "https://www.youtube.com/watch?v="
	DefaultRequestsPerSecond = 5.0
)

type Options struct {
	APIKey            string
	ChannelID         string
	RequestsPerSecond float64
	// Endpoint and HTTPClient override the public API, mainly for tests.
	Endpoint   string
	HTTPClient *http.Client
}

// Collector lists every video of a channel, newest first.
type Collector struct {
	service   *ytapi.Service
	channelID string
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

func NewCollector(ctx context.Context, opts Options, logger zerolog.Logger) (*Collector, error) {
	channelID := strings.TrimSpace(opts.ChannelID)
	if channelID == "" {
		return nil, fmt.Errorf("youtube channel id is required")
	}

	clientOptions := make([]option.ClientOption, 0, 3)
	if opts.HTTPClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(opts.HTTPClient))
	} else {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("youtube api key is required")
		}
		clientOptions = append(clientOptions, option.WithAPIKey(strings.TrimSpace(opts.APIKey)))
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	service, err := ytapi.NewService(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	return &Collector{
		service:   service,
		channelID: channelID,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		logger:    logger,
	}, nil
}

// All walks the channel page by page. Iteration stops at the first error,
// which is yielded with a nil item.
func (c *Collector) All(ctx context.Context) iter.Seq2[*topic.ChannelItem, error] {
	return func(yield func(*topic.ChannelItem, error) bool) {
		pageToken := ""
		for page := 1; ; page++ {
			ids, snippets, next, err := c.searchPage(ctx, pageToken)
			if err != nil {
				yield(nil, err)
				return
			}

			details, err := c.videoDetails(ctx, ids)
			if err != nil {
				yield(nil, err)
				return
			}

			c.logger.Debug().
				Int("page", page).
				Int("videos", len(ids)).
				Str("channel_id", c.channelID).
				Msg("youtube search page fetched")

			for _, id := range ids {
				item, ok := details[id]
				if !ok {
					item = snippets[id]
				}
				if !yield(item, nil) {
					return
				}
			}

			if next == "" {
				return
			}
			pageToken = next
		}
	}
}

// FetchAll returns the full current item set of the channel.
func (c *Collector) FetchAll(ctx context.Context) ([]*topic.ChannelItem, error) {
	items := make([]*topic.ChannelItem, 0, pageSize)
	for item, err := range c.All(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	c.logger.Info().
		Int("videos", len(items)).
		Str("channel_id", c.channelID).
		Msg("youtube channel fetched")
	return items, nil
}

func (c *Collector) searchPage(ctx context.Context, pageToken string) ([]string, map[string]*topic.ChannelItem, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, "", err
	}

	call := c.service.Search.List([]string{"snippet"}).
		ChannelId(c.channelID).
		MaxResults(pageSize).
		Order("date").
		Type("video").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, nil, "", classify("youtube search", err)
	}

	ids := make([]string, 0, len(resp.Items))
	snippets := make(map[string]*topic.ChannelItem, len(resp.Items))
	for _, result := range resp.Items {
		if result == nil || result.Id == nil || strings.TrimSpace(result.Id.VideoId) == "" {
			continue
		}
		id := result.Id.VideoId
		if _, seen := snippets[id]; seen {
			continue
		}
		item := &topic.ChannelItem{ID: id, URL: watchURLPrefix + id}
		if result.Snippet != nil {
			item.Title = result.Snippet.Title
			item.Description = result.Snippet.Description
			item.PublishedAt = parsePublishedAt(result.Snippet.PublishedAt)
		}
		ids = append(ids, id)
		snippets[id] = item
	}
	return ids, snippets, resp.NextPageToken, nil
}

// videoDetails fetches full snippets; search results carry truncated descriptions.
func (c *Collector) videoDetails(ctx context.Context, ids []string) (map[string]*topic.ChannelItem, error) {
	details := make(map[string]*topic.ChannelItem, len(ids))
	if len(ids) == 0 {
		return details, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Videos.List([]string{"snippet"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("youtube videos", err)
	}

	for _, video := range resp.Items {
		if video == nil || video.Snippet == nil || video.Id == "" {
			continue
		}
		details[video.Id] = &topic.ChannelItem{
			ID:          video.Id,
			Title:       video.Snippet.Title,
			Description: video.Snippet.Description,
			URL:         watchURLPrefix + video.Id,
			PublishedAt: parsePublishedAt(video.Snippet.PublishedAt),
		}
	}
	return details, nil
}

func parsePublishedAt(raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
