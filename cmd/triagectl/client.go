package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// apiClient is a thin resty wrapper over the triage HTTP API. Responses are
// returned as raw JSON for printing.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &apiClient{http: c}
}

type apiError struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *apiClient) check(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		var e apiError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), e.Message)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return resp.Body(), nil
}

func (c *apiClient) ingest(subject, body, from string, ts time.Time) ([]byte, error) {
	payload := map[string]interface{}{
		"subject":   subject,
		"body":      body,
		"from":      from,
		"timestamp": ts.UTC().Format(time.RFC3339),
	}
	return c.check(c.http.R().SetBody(payload).Post("/ingest-email"))
}

func (c *apiClient) list(limit int) ([]byte, error) {
	req := c.http.R()
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	return c.check(req.Get("/emails"))
}

func (c *apiClient) show(id string) ([]byte, error) {
	return c.check(c.http.R().Get("/emails/" + url.PathEscape(id)))
}

func (c *apiClient) sample() ([]byte, error) {
	return c.check(c.http.R().Get("/random-sample-email"))
}

func (c *apiClient) reassign(id, team string) ([]byte, error) {
	return c.check(c.http.R().
		SetBody(map[string]string{"new_team": team}).
		Post("/reassign-email/" + url.PathEscape(id)))
}

func (c *apiClient) draft(id string) ([]byte, error) {
	return c.check(c.http.R().
		SetBody(map[string]string{"email_id": id}).
		Post("/generate-reply"))
}

func (c *apiClient) saveReply(id, reply string) ([]byte, error) {
	return c.check(c.http.R().
		SetBody(map[string]string{"reply": reply}).
		Post("/save-reply/" + url.PathEscape(id)))
}

func (c *apiClient) feedback(id string) ([]byte, error) {
	return c.check(c.http.R().Post("/generate-feedback/" + url.PathEscape(id)))
}
