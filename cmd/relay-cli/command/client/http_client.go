package client

// http_client.go = REST calls against the relay server.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"webremote/cmd/relay-cli/dto"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PushData posts a binary blob to /data for broadcast to every session.
func (c *HTTPClient) PushData(body io.Reader) error {
	resp, err := c.httpClient.Post(c.baseURL+"/data", "application/octet-stream", body)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, http.StatusOK)
}

func (c *HTTPClient) GetHealth() (*dto.HealthStatus, error) {
	var status dto.HealthStatus
	if err := c.getJSON("/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) SetHealth(status dto.HealthStatus) error {
	body, err := json.Marshal(status)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Post(c.baseURL+"/health", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("health update failed: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, http.StatusOK)
}

func (c *HTTPClient) GetHealthHistory(limit int) (*dto.HealthHistoryResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var history dto.HealthHistoryResponse
	if err := c.getJSON("/health/history?"+q.Encode(), &history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (c *HTTPClient) StartSubprocess() (*dto.SubprocessStartedResponse, error) {
	var started dto.SubprocessStartedResponse
	if err := c.getJSON("/subprocess/start", &started); err != nil {
		return nil, err
	}
	return &started, nil
}

func (c *HTTPClient) getJSON(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return checkStatus(resp, http.StatusOK)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus turns an unexpected response into an error carrying the
// server's {"error": ...} message when there is one.
func checkStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr dto.ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
