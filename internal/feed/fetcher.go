// Package feed fetches the upstream music-copyright order feed and
// normalizes it into the internal order model.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"royaltyflow/internal/models"
)

// songIDPattern extracts the numeric song id from a record's detail-page URL,
// e.g. https://www.musicow.com/song/1737 -> "1737".
var songIDPattern = regexp.MustCompile(`/song/(\d+)`)

// dateLayouts are the timestamp formats observed on the feed.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rawOrder is one record as shipped by the upstream feed.
type rawOrder struct {
	OrderNo      string  `json:"order_no"`
	OrderDate    string  `json:"order_date"`
	SongName     string  `json:"song_name"`
	SongArtist   string  `json:"song_artist"`
	SongCategory string  `json:"song_category"`
	OrderType    string  `json:"order_type"`
	OrderStatus  string  `json:"order_status"`
	OrderPrice   float64 `json:"order_price"`
	OrderCount   int64   `json:"order_count"`
	LeavesCount  int64   `json:"leaves_count"`
	RecentPrice  float64 `json:"recent_price"`
	RoyaltyRate  float64 `json:"order_royalty_rate"`
	URLLink      string  `json:"url_link"`
}

// Client fetches and normalizes the order feed.
type Client struct {
	http      *http.Client
	url       string
	validator *RecordValidator
	logger    *slog.Logger
}

// NewClient creates a feed client.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	validator, err := NewRecordValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build record validator: %w", err)
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		url:       url,
		validator: validator,
		logger:    logger.With("component", "feed_client"),
	}, nil
}

// Fetch downloads the feed and returns the normalized orders. Records failing
// schema validation or normalization are dropped and counted, never passed
// downstream.
func (c *Client) Fetch(ctx context.Context) ([]models.Order, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, 0, fmt.Errorf("invalid feed payload, expected JSON array: %w", err)
	}

	orders := make([]models.Order, 0, len(records))
	dropped := 0

	for i, record := range records {
		order, err := c.normalizeRecord(record)
		if err != nil {
			dropped++
			c.logger.Warn("record_dropped", "index", i, "error", err)
			continue
		}
		orders = append(orders, order)
	}

	return orders, dropped, nil
}

// normalizeRecord validates one raw record and maps it onto the internal
// order model.
func (c *Client) normalizeRecord(record json.RawMessage) (models.Order, error) {
	var decoded interface{}
	if err := json.Unmarshal(record, &decoded); err != nil {
		return models.Order{}, fmt.Errorf("malformed record: %w", err)
	}

	if err := c.validator.Validate(decoded); err != nil {
		return models.Order{}, err
	}

	var raw rawOrder
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Order{}, fmt.Errorf("record decode failed: %w", err)
	}

	orderDate, err := parseOrderDate(raw.OrderDate)
	if err != nil {
		return models.Order{}, err
	}

	orderType, err := normalizeOrderType(raw.OrderType)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		OrderNo:      raw.OrderNo,
		OrderDate:    orderDate,
		SongID:       extractSongID(raw.URLLink, raw.OrderNo),
		SongName:     raw.SongName,
		SongArtist:   raw.SongArtist,
		SongCategory: raw.SongCategory,
		OrderType:    orderType,
		OrderStatus:  normalizeOrderStatus(raw.OrderStatus),
		OrderPrice:   raw.OrderPrice,
		OrderCount:   raw.OrderCount,
		LeavesCount:  raw.LeavesCount,
		RecentPrice:  raw.RecentPrice,
		RoyaltyRate:  raw.RoyaltyRate,
		URLLink:      raw.URLLink,
	}

	if err := models.ValidateOrder(&order); err != nil {
		return models.Order{}, err
	}

	return order, nil
}

// extractSongID derives the song id from the detail URL, falling back to the
// order number when the URL carries no song path.
func extractSongID(urlLink, orderNo string) string {
	if m := songIDPattern.FindStringSubmatch(urlLink); m != nil {
		return m[1]
	}
	return orderNo
}

func parseOrderDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable order_date %q", s)
}

// normalizeOrderType maps the feed's side labels, including the upstream
// Korean ones, onto the internal enumeration.
func normalizeOrderType(s string) (models.OrderType, error) {
	switch s {
	case "buy", "구매":
		return models.OrderTypeBuy, nil
	case "sell", "판매":
		return models.OrderTypeSell, nil
	}
	return "", fmt.Errorf("unknown order_type %q", s)
}

// normalizeOrderStatus maps feed status labels onto the internal enumeration.
// Unknown statuses default to pending rather than dropping the record; status
// does not feed any metric.
func normalizeOrderStatus(s string) models.OrderStatus {
	switch s {
	case "filled", "체결":
		return models.OrderStatusFilled
	case "cancelled", "취소":
		return models.OrderStatusCancelled
	default:
		return models.OrderStatusPending
	}
}
