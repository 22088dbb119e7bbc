package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"patrimoine_backend/platform/logger"
)

const defaultPageSize = 500

// Client fetches catalogue notices from the Palissy open data API. A
// shared limiter throttles requests so batch runs stay polite to the
// public endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a catalogue client throttled to ratePerSecond.
func NewClient(baseURL string, ratePerSecond float64, log *logger.Logger) *Client {
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		log:        log,
	}
}

type page struct {
	Total   int   `json:"total"`
	Results []Row `json:"results"`
}

// FetchDepartement streams every notice of a departement to fn,
// page by page. Returning an error from fn stops the fetch.
func (c *Client) FetchDepartement(ctx context.Context, departementCode string, fn func(Row) error) error {
	offset := 0
	for {
		p, err := c.fetchPage(ctx, departementCode, offset)
		if err != nil {
			return err
		}
		for _, row := range p.Results {
			if err := fn(row); err != nil {
				return err
			}
		}

		offset += len(p.Results)
		if len(p.Results) == 0 || offset >= p.Total {
			return nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, departementCode string, offset int) (page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return page{}, err
	}

	params := url.Values{}
	params.Set("dpt", departementCode)
	params.Set("limit", fmt.Sprint(defaultPageSize))
	params.Set("offset", fmt.Sprint(offset))
	reqURL := fmt.Sprintf("%s/notices?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return page{}, fmt.Errorf("create catalogue request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("fetch catalogue page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page{}, fmt.Errorf("catalogue returned status %d for %s", resp.StatusCode, reqURL)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return page{}, fmt.Errorf("decode catalogue page: %w", err)
	}

	c.log.Debug("fetched catalogue page",
		"departement", departementCode, "offset", offset, "rows", len(p.Results), "total", p.Total)
	return p, nil
}
