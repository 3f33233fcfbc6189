package places

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/guonaihong/gout"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/config"
)

const requestTimeout = 5 * time.Second

// Review as served to the public site
type Review struct {
	AuthorName              string  `json:"author_name"`
	Rating                  float64 `json:"rating"`
	Text                    string  `json:"text"`
	Time                    int64   `json:"time"` // unix milliseconds
	RelativeTimeDescription string  `json:"relative_time_description,omitempty"`
}

type placeReview struct {
	AuthorName              string  `mapstructure:"author_name"`
	Rating                  float64 `mapstructure:"rating"`
	Text                    string  `mapstructure:"text"`
	Time                    int64   `mapstructure:"time"`
	RelativeTimeDescription string  `mapstructure:"relative_time_description"`
}

type detailsResponse struct {
	Status       string `mapstructure:"status"`
	ErrorMessage string `mapstructure:"error_message"`
	Result       struct {
		Name    string        `mapstructure:"name"`
		Rating  float64       `mapstructure:"rating"`
		Reviews []placeReview `mapstructure:"reviews"`
	} `mapstructure:"result"`
}

// Client proxies the Google Places details API with a small in-memory cache
type Client struct {
	cfg    config.PlacesConfig
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	mu       sync.Mutex
	cached   []Review
	cachedAt time.Time
}

func NewClient(cfg config.PlacesConfig, ttl time.Duration) *Client {
	return &Client{cfg: cfg, ttl: ttl, client: &http.Client{}, now: time.Now}
}

func (c *Client) Configured() bool {
	return c.cfg.PlaceID != "" && c.cfg.ApiKey != ""
}

// Reviews returns the place's reviews, or the bundled samples when the API
// is not configured or fails.
func (c *Client) Reviews(ctx context.Context) []Review {
	if !c.Configured() {
		return SampleReviews(c.now())
	}
	c.mu.Lock()
	if c.cached != nil && c.now().Sub(c.cachedAt) < c.ttl {
		out := c.cached
		c.mu.Unlock()
		return out
	}
	c.mu.Unlock()

	reviews, err := c.fetch(ctx)
	if err != nil {
		zap.L().Error("google places request failed", zap.Error(err))
		return SampleReviews(c.now())
	}
	c.mu.Lock()
	c.cached = reviews
	c.cachedAt = c.now()
	c.mu.Unlock()
	return reviews
}

func (c *Client) fetch(ctx context.Context) ([]Review, error) {
	var (
		raw  map[string]interface{}
		code int
	)
	err := gout.New(c.client).
		GET(c.cfg.Endpoint).
		WithContext(ctx).
		SetTimeout(requestTimeout).
		SetQuery(gout.H{
			"place_id": c.cfg.PlaceID,
			"fields":   "name,rating,reviews",
			"key":      c.cfg.ApiKey,
		}).
		BindJSON(&raw).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "places details request")
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("places details status %d", code)
	}

	var resp detailsResponse
	if err := mapstructure.Decode(raw, &resp); err != nil {
		return nil, errors.Wrap(err, "decode places details")
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("places api status %s: %s", resp.Status, resp.ErrorMessage)
	}
	reviews := make([]Review, 0, len(resp.Result.Reviews))
	for _, r := range resp.Result.Reviews {
		reviews = append(reviews, Review{
			AuthorName:              r.AuthorName,
			Rating:                  r.Rating,
			Text:                    r.Text,
			Time:                    r.Time * 1000,
			RelativeTimeDescription: r.RelativeTimeDescription,
		})
	}
	return reviews, nil
}

// SampleReviews placeholder reviews shown until the Places API is set up
func SampleReviews(now time.Time) []Review {
	day := 24 * time.Hour
	return []Review{
		{
			AuthorName: "Marko Petrović",
			Rating:     5,
			Text:       "Odličan smeštaj! Prelepa lokacija na vodi, čisto i uredno. Preporučujem svima!",
			Time:       now.Add(-day).UnixMilli(),
		},
		{
			AuthorName: "Ana Jovanović",
			Rating:     5,
			Text:       "Savršeno mesto za opuštanje. Terasa na vodi je neverovatna, a domaćini su vrlo ljubazni.",
			Time:       now.Add(-2 * day).UnixMilli(),
		},
		{
			AuthorName: "Stefan Nikolić",
			Rating:     5,
			Text:       "Najbolji vikend ikada! Moderna kuhinja, brz WiFi, sve je bilo savršeno. Definitivno ćemo se vratiti.",
			Time:       now.Add(-3 * day).UnixMilli(),
		},
	}
}
