// Package geo resolves shared coordinates to street addresses via the
// Nominatim reverse-geocoding API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulsedelivery/orderbot/internal/logger"
)

const requestTimeout = 5 * time.Second

// Config configures the Nominatim client.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Client queries a Nominatim instance. It fails closed: any error yields
// ok=false and the caller falls back to raw coordinates.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
}

// NewClient builds a client against the given Nominatim base URL.
func NewClient(cfg Config) *Client {
	return &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: requestTimeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road        string `json:"road"`
		HouseNumber string `json:"house_number"`
		Suburb      string `json:"suburb"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
	} `json:"address"`
}

// Resolve reverse-geocodes the point into a short street address.
func (c *Client) Resolve(ctx context.Context, lat, lon float64) (string, bool) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%v", lat))
	q.Set("lon", fmt.Sprintf("%v", lon))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "geo", "geo.reverse",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn(ctx, "geo", "geo.reverse",
			slog.String("status", "fail"),
			slog.Int("http_code", resp.StatusCode),
		)
		return "", false
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false
	}

	addr := compose(body)
	if addr == "" {
		return "", false
	}
	logger.Debug(ctx, "geo", "geo.reverse", slog.String("status", "ok"))
	return addr, true
}

// compose builds "road house, suburb, city" from whatever parts are present,
// falling back to the full display name.
func compose(r reverseResponse) string {
	var parts []string
	street := r.Address.Road
	if street != "" && r.Address.HouseNumber != "" {
		street += ", " + r.Address.HouseNumber
	}
	if street != "" {
		parts = append(parts, street)
	}
	if r.Address.Suburb != "" {
		parts = append(parts, r.Address.Suburb)
	}
	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	if city != "" {
		parts = append(parts, city)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(r.DisplayName)
	}
	return strings.Join(parts, ", ")
}
