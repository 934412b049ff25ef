package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Client fetches the course catalog from the external platform.
type Client interface {
	Catalog(ctx context.Context) ([]ExternalCourse, error)
}

type httpClient struct {
	conf   core.PlatformConfig
	logger core.Logger
	client *http.Client
}

var _ Client = (*httpClient)(nil)

func NewClient(conf core.PlatformConfig, logger core.Logger) Client {
	return &httpClient{
		conf:   conf,
		logger: logger,
		client: &http.Client{Timeout: conf.Timeout},
	}
}

// Catalog fetches all courses from the platform API. A missing base URL or
// API key means the platform is not wired up for this deployment; that is
// logged as a warning and yields an empty catalog rather than an error.
func (c *httpClient) Catalog(ctx context.Context) ([]ExternalCourse, error) {
	if c.conf.BaseURL == "" || c.conf.APIKey == "" {
		c.logger.Warn("platform API not configured; skipping catalog fetch")
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.BaseURL+"/api/courses", nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating catalog request")
	}
	req.Header.Set("Authorization", "Bearer "+c.conf.APIKey)
	req.Header.Set("X-API-Secret", c.conf.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("fetching catalog: platform API returned %s", resp.Status)
	}

	var body struct {
		Courses []ExternalCourse `json:"courses"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}
	c.logger.Info(fmt.Sprintf("fetched %d courses from platform", len(body.Courses)))
	return body.Courses, nil
}
