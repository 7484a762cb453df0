package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// ErrNotFound is returned when TMDB has no movie with the requested id.
var ErrNotFound = domain.ErrNotFound

// DefaultImageBaseURL is the TMDB image CDN root.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// Client resolves TMDB ids into movie fields.
type Client interface {
	MovieDetails(ctx context.Context, id int64) (domain.MovieCreate, error)
}

// HTTPClient implements Client against the TMDB v3 REST API.
type HTTPClient struct {
	baseURL      *url.URL
	apiKey       string
	imageBaseURL string
	client       *http.Client
	logger       *log.Logger
}

// NewHTTPClient constructs a TMDB client. imageBaseURL may be empty to use the
// public CDN.
func NewHTTPClient(baseURL, apiKey, imageBaseURL string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return &HTTPClient{
		baseURL:      parsed,
		apiKey:       apiKey,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// MovieDetails fetches /movie/{id} with credits and videos appended.
func (c *HTTPClient) MovieDetails(ctx context.Context, id int64) (domain.MovieCreate, error) {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + "/movie/" + strconv.FormatInt(id, 10)
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("append_to_response", "credits,videos")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.MovieCreate{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.MovieCreate{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload detailsPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return domain.MovieCreate{}, fmt.Errorf("decode tmdb response: %w", err)
		}
		movie := convertDetails(payload, c.imageBaseURL)
		movie.ExternalID = id
		return movie, nil
	case http.StatusNotFound:
		return domain.MovieCreate{}, ErrNotFound
	default:
		c.logger.Printf("tmdb: unexpected status %d for movie %d", resp.StatusCode, id)
		return domain.MovieCreate{}, fmt.Errorf("tmdb: upstream returned %d", resp.StatusCode)
	}
}
