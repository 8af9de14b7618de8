// Package geo resolves visitor IP addresses to a coarse location through
// the ip-api.com JSON endpoint.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
)

// LocalCountry is the sentinel country for private and loopback addresses,
// which never leave the process for lookup.
const LocalCountry = "local"

// Resolver looks up a location for an IP address. Mockable in tests.
type Resolver interface {
	Lookup(ctx context.Context, ip string) *chat.Location
}

// Client is the concrete ip-api.com resolver.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

// NewClient creates a resolver with a bounded per-lookup timeout.
func NewClient(endpoint string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type lookupResponse struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
}

// Lookup resolves an IP to a location. Failures return nil rather than an
// error: location is decoration, never a reason to fail a chat start.
func (c *Client) Lookup(ctx context.Context, ip string) *chat.Location {
	if isPrivateOrLoopback(ip) {
		return &chat.Location{Country: LocalCountry}
	}

	start := time.Now()
	url := fmt.Sprintf("%s/%s", c.endpoint, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Geo().Warn("Geo lookup request build failed", "ip", ip, "error", err.Error())
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Geo().Warn("Geo lookup failed", "ip", ip, "error", err.Error())
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Geo().Warn("Geo lookup returned non-OK status", "ip", ip, "status", resp.StatusCode)
		return nil
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Geo().Warn("Geo lookup response unreadable", "ip", ip, "error", err.Error())
		return nil
	}
	if payload.Status != "success" {
		c.logger.Geo().Debug("Geo lookup unresolved", "ip", ip, "status", payload.Status)
		return nil
	}

	c.logger.Geo().Debug("Geo lookup resolved", "ip", ip, "country", payload.Country, "city", payload.City, "duration", time.Since(start))
	return &chat.Location{
		Country: payload.Country,
		City:    payload.City,
		Region:  payload.RegionName,
	}
}

func isPrivateOrLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified()
}
