// Package adsevent reports a completed receipt as a conversion event to the
// Meta Conversions API, so ad spend attribution can see which campaigns
// actually drove a paying customer.
package adsevent

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultEndpoint = "https://graph.facebook.com/v19.0"

// Client posts conversion events for one ad account's pixel.
type Client struct {
	PixelID     string
	AccessToken string
	Endpoint    string
	HTTPClient  *http.Client
}

// NewClient builds a Client against the production Graph API endpoint.
func NewClient(pixelID, accessToken string) *Client {
	return &Client{
		PixelID:     pixelID,
		AccessToken: accessToken,
		Endpoint:    defaultEndpoint,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ConversionEvent is the domain fact the rest of the system reports: a
// WhatsApp contact completed a purchase recognized by the receipt pipeline.
type ConversionEvent struct {
	Phone     string
	Amount    float64
	Currency  string
	EventTime time.Time
}

var nonDigitsRE = regexp.MustCompile(`\D`)

// hashPhone normalizes a phone number to digits only and SHA-256 hashes it,
// the single pseudonymization step every piece of contact PII goes through
// before it leaves the process.
func hashPhone(phone string) string {
	digits := nonDigitsRE.ReplaceAllString(phone, "")
	sum := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(sum[:])
}

type payload struct {
	Data []eventData `json:"data"`
}

type eventData struct {
	EventName    string       `json:"event_name"`
	EventTime    int64        `json:"event_time"`
	EventID      string       `json:"event_id"`
	ActionSource string       `json:"action_source"`
	UserData     userData     `json:"user_data"`
	CustomData   customData   `json:"custom_data"`
}

type userData struct {
	PhoneHash string `json:"ph"`
}

type customData struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

func buildPayload(ev ConversionEvent) payload {
	return payload{Data: []eventData{{
		EventName:    "Purchase",
		EventTime:    ev.EventTime.Unix(),
		EventID:      uuid.NewString(),
		ActionSource: "chat",
		UserData:     userData{PhoneHash: hashPhone(ev.Phone)},
		CustomData:   customData{Currency: strings.ToUpper(ev.Currency), Value: ev.Amount},
	}}}
}

// Emit POSTs ev to the Conversions API.
func (c *Client) Emit(ctx context.Context, ev ConversionEvent) error {
	body, err := json.Marshal(buildPayload(ev))
	if err != nil {
		return fmt.Errorf("adsevent: encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/events?access_token=%s", c.Endpoint, c.PixelID, c.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("adsevent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("adsevent: send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("adsevent: conversions api returned status %d", resp.StatusCode)
	}
	return nil
}
