// Package registryclient implements the endpoint registry collaborator over
// plain HTTP/JSON.
package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"servegate/internal/serving"
)

const defaultTimeout = 5 * time.Second

// Client talks to a remote endpoint registry. It implements
// serving.RegistryClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New constructs a Client for the given base URL. token, when non-empty, is
// sent as a bearer token on every request.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) endpointURL(project, name string, extra ...string) string {
	parts := []string{c.baseURL, "v1", "projects", url.PathEscape(project), "endpoints"}
	if name != "" {
		parts = append(parts, url.PathEscape(name))
	}
	for _, p := range extra {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return serving.ErrEndpointNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("registry request %s %s failed with status %s", method, rawURL, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) GetEndpoint(ctx context.Context, project, name, functionName, functionTag string) (*serving.EndpointRecord, error) {
	q := url.Values{}
	q.Set("function_name", functionName)
	q.Set("function_tag", functionTag)
	var rec serving.EndpointRecord
	if err := c.do(ctx, http.MethodGet, c.endpointURL(project, name)+"?"+q.Encode(), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) CreateEndpoint(ctx context.Context, record *serving.EndpointRecord) (*serving.EndpointRecord, error) {
	var rec serving.EndpointRecord
	if err := c.do(ctx, http.MethodPost, c.endpointURL(record.Project, ""), record, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) PatchEndpoint(ctx context.Context, project, name, uid string, attributes map[string]any) (*serving.EndpointRecord, error) {
	var rec serving.EndpointRecord
	if err := c.do(ctx, http.MethodPatch, c.endpointURL(project, name, uid), attributes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
