// Package backend wraps the two backend calls the device makes: zone
// validation during configuration and device registration after a
// successful protocol trial.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"
)

const secretHeader = "X-Device-Secret"

// Error is a typed backend failure; Type matches the error-event taxonomy
// published on the bus (WiFi, DNS, API).
type Error struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Link reports whether the underlying network connection is up. Both
// calls check it explicitly before doing anything else.
type Link interface {
	Connected() bool
}

// Registration is the device registration payload.
type Registration struct {
	DeviceID        string `json:"device_id"`
	ZoneID          string `json:"zone_id"`
	ACBrandName     string `json:"ac_brand_name"`
	ACBrandProtocol string `json:"ac_brand_protocol"`
	FirmwareVersion string `json:"firmware_version"`
}

// Client calls the backend HTTP API.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	link       Link
	logger     *log.Logger
}

// New creates a backend client. With insecure set, transport certificate
// validation is disabled.
// TODO: pin the backend CA instead of skipping verification once the
// deployment settles on a certificate story.
func New(baseURL, secret string, timeout time.Duration, insecure bool, link Link, logger *log.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
	}
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		link:   link,
		logger: logger,
	}
}

// ValidateZone asks the backend whether the zone belongs to the customer.
// Only an HTTP 200 with {"valid": true} counts; every other outcome
// returns false with the failure detail.
func (c *Client) ValidateZone(ctx context.Context, customerID, zoneID string) (bool, error) {
	if err := c.preflight(); err != nil {
		return false, err
	}

	payload, err := json.Marshal(map[string]string{
		"customer_id": customerID,
		"zone_id":     zoneID,
	})
	if err != nil {
		return false, &Error{Type: "API", Message: fmt.Sprintf("encode zone validation payload: %v", err)}
	}

	c.logf("[API] Validating zone: customer=%s zone=%s", customerID, zoneID)
	resp, err := c.post(ctx, c.baseURL+"/validate-zone", payload)
	if err != nil {
		return false, &Error{Type: "API", Message: fmt.Sprintf("zone validation request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &Error{Type: "API", Message: fmt.Sprintf("zone validation failed with HTTP code %d", resp.StatusCode)}
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, &Error{Type: "API", Message: fmt.Sprintf("failed to parse zone validation response: %v", err)}
	}

	c.logf("[API] Zone validation result: %v", result.Valid)
	return result.Valid, nil
}

// RegisterDevice registers the device under the customer. Only HTTP 201
// is success; on any other outcome the response body is included in the
// error for diagnosis.
func (c *Client) RegisterDevice(ctx context.Context, customerID string, reg Registration) error {
	if err := c.preflight(); err != nil {
		return err
	}

	payload, err := json.Marshal(reg)
	if err != nil {
		return &Error{Type: "API", Message: fmt.Sprintf("encode registration payload: %v", err)}
	}

	c.logf("[API] Registering device %s for customer %s", reg.DeviceID, customerID)
	resp, err := c.post(ctx, fmt.Sprintf("%s/customers/%s/devices", c.baseURL, customerID), payload)
	if err != nil {
		return &Error{Type: "API", Message: fmt.Sprintf("device registration request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &Error{
			Type:    "API",
			Message: fmt.Sprintf("device registration failed with code %d, response: %s", resp.StatusCode, body),
		}
	}

	c.logf("[API] Device registered successfully")
	return nil
}

// preflight verifies the link is up and the backend hostname resolves,
// failing fast with a typed error before any HTTP work.
func (c *Client) preflight() error {
	if c.link != nil && !c.link.Connected() {
		return &Error{Type: "WiFi", Message: "network not connected before backend call"}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return &Error{Type: "API", Message: fmt.Sprintf("invalid API base URL: %v", err)}
	}
	if _, err := net.LookupHost(u.Hostname()); err != nil {
		return &Error{Type: "DNS", Message: fmt.Sprintf("failed to resolve API hostname %s: %v", u.Hostname(), err)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, c.secret)
	return c.httpClient.Do(req)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
