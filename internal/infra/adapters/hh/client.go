package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/infra/worker"

	"github.com/rs/zerolog"
)

var _ adapter.ListingSource = (*Client)(nil)

// HTTPError is returned for any non-2xx answer of the API.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("hh api %s: HTTP %d", e.URL, e.StatusCode)
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Salary is the salary fork of a vacancy; bounds are optional.
type Salary struct {
	Currency string `json:"currency"`
	From     *int64 `json:"from"`
	To       *int64 `json:"to"`
}

type searchItem struct {
	URL     string `json:"url"`
	Snippet struct {
		Responsibility *string `json:"responsibility"`
		Requirement    *string `json:"requirement"`
	} `json:"snippet"`
}

type searchPage struct {
	Items []searchItem `json:"items"`
}

type vacancy struct {
	Name         string     `json:"name"`
	Experience   namedRef   `json:"experience"`
	Salary       *Salary    `json:"salary"`
	Schedule     namedRef   `json:"schedule"`
	CreatedAt    string     `json:"created_at"`
	PublishedAt  string     `json:"published_at"`
	Employer     namedRef   `json:"employer"`
	Area         namedRef   `json:"area"`
	AlternateURL string     `json:"alternate_url"`
	KeySkills    []namedRef `json:"key_skills"`
}

// Client reads vacancies from the hh.ru public API: one search request per
// position, then one detail request per search result.
type Client struct {
	httpClient         *http.Client
	userAgent          string
	excludedExperience string
	details            *worker.Pool
	log                *zerolog.Logger
}

func NewClient(httpClient *http.Client, userAgent, excludedExperience string, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	compLog := logger.With().Str("component", "hh.Client").Logger()
	return &Client{
		httpClient:         httpClient,
		userAgent:          userAgent,
		excludedExperience: excludedExperience,
		details:            worker.NewPool(1),
		log:                &compLog,
	}
}

// WithDetailWorkers sets how many vacancy detail requests run in parallel.
func (c *Client) WithDetailWorkers(n int) *Client {
	c.details = worker.NewPool(n)
	return c
}

// FetchListings returns the open listings of the position in search order.
// Any failed request aborts the whole position.
func (c *Client) FetchListings(ctx context.Context, position model.Position) ([]model.Listing, error) {
	var page searchPage
	if err := c.getJSON(ctx, position.SourceURL, &page); err != nil {
		return nil, fmt.Errorf("search %s: %w", position.Key, err)
	}

	details := make([]*vacancy, len(page.Items))
	err := c.details.Run(ctx, len(page.Items), func(ctx context.Context, i int) error {
		var v vacancy
		if err := c.getJSON(ctx, page.Items[i].URL, &v); err != nil {
			return fmt.Errorf("vacancy %s: %w", page.Items[i].URL, err)
		}
		details[i] = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	listings := make([]model.Listing, 0, len(page.Items))
	for i, item := range page.Items {
		v := details[i]
		if v.Experience.ID == c.excludedExperience {
			continue
		}
		desc, req := SanitizeSnippets(item.Snippet.Responsibility, item.Snippet.Requirement)
		listings = append(listings, model.Listing{
			Category:     position.Key,
			Name:         v.Name,
			Salary:       FormatSalary(v.Salary),
			Company:      v.Employer.Name,
			CreatedAt:    v.CreatedAt,
			PublishedAt:  v.PublishedAt,
			Schedule:     v.Schedule.Name,
			Experience:   formatExperience(v.Experience.Name),
			Location:     model.NormalizeLocation(v.Area.Name),
			Description:  desc,
			Requirements: req,
			Skills:       joinSkills(v.KeySkills),
			URL:          v.AlternateURL,
		})
	}

	c.log.Debug().
		Str("position", string(position.Key)).
		Int("found", len(page.Items)).
		Int("kept", len(listings)).
		Msg("listings fetched")
	return listings, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HH-User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
