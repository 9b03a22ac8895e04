/**
 * @description
 * This package provides a client for the Lendsqr Adjutor Karma blacklist API.
 * Registration consults it before creating a user: a 404 from the API means
 * the email is not blacklisted, a 200 means it is. Any other outcome is a
 * lookup failure and propagates as an error.
 *
 * @dependencies
 * - context, fmt, io, net/http, net/url, time: Standard Go libraries.
 */
package karmaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a client for the Karma verification API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new Karma API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsBlacklisted looks the email up in the Karma blacklist.
func (c *Client) IsBlacklisted(ctx context.Context, email string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v2/verification/karma/%s", c.BaseURL, url.PathEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("karma blacklist request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return false, nil
	case http.StatusOK:
		return true, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("karma blacklist lookup returned status %d: %s", resp.StatusCode, string(body))
	}
}
