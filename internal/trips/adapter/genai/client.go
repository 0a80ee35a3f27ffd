// Package genai is the HTTP client for the companion generation backend,
// which fronts the actual language and image models. It implements both the
// ListGenerator and ImageGenerator contracts.
package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/model"
)

// Client calls the generation backend's REST endpoints.
type Client struct {
	baseURL    string
	imageModel string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a generation backend client. imageModel names the
// text-to-image model requested on image calls; empty means the backend's
// default.
func NewClient(baseURL, imageModel string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		imageModel: imageModel,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("genai"),
	}
}

// wireQuantity tolerates the backend emitting quantity as a number, a
// numeric string, or free text. Unparseable values come through as zero.
type wireQuantity int

func (q *wireQuantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	n, err := strconv.Atoi(s)
	if err != nil {
		*q = 0
		return nil
	}
	*q = wireQuantity(n)
	return nil
}

type wireItem struct {
	Name     string       `json:"item"`
	Quantity wireQuantity `json:"quantity"`
}

type wireList struct {
	Summary string     `json:"summary"`
	Items   []wireItem `json:"packing_list"`
}

type wireImage struct {
	ImageBase64 string `json:"image_base64"`
}

// GeneratePackingList asks the backend for a packing list for a destination
// and trip length.
func (c *Client) GeneratePackingList(ctx context.Context, destination string, days int) (*model.GeneratedList, error) {
	query := url.Values{}
	query.Set("destination", destination)
	query.Set("num_day", strconv.Itoa(days))

	var wire wireList
	if err := c.getJSON(ctx, "/generate-packing-list", query, &wire); err != nil {
		return nil, err
	}

	list := &model.GeneratedList{
		Summary: wire.Summary,
		Items:   make([]model.GeneratedItem, 0, len(wire.Items)),
	}
	for _, item := range wire.Items {
		quantity := int(item.Quantity)
		if quantity < 1 {
			c.log.Warnf("Unusable quantity for item %q, defaulting to 1", item.Name)
			quantity = 1
		}
		list.Items = append(list.Items, model.GeneratedItem{
			Name:     item.Name,
			Quantity: quantity,
		})
	}

	c.log.Infof("Generated packing list for %q: %d items", destination, len(list.Items))
	return list, nil
}

// GenerateImages asks the backend for count images for a prompt and returns
// the decoded payloads. The backend serves one image per call.
func (c *Client) GenerateImages(ctx context.Context, prompt string, count int) ([][]byte, error) {
	images := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		query := url.Values{}
		query.Set("prompt", prompt)
		if c.imageModel != "" {
			query.Set("model", c.imageModel)
		}

		var wire wireImage
		if err := c.getJSON(ctx, "/generate-image", query, &wire); err != nil {
			return nil, err
		}

		data, err := base64.StdEncoding.DecodeString(wire.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode generated image: %w", err)
		}
		images = append(images, data)
	}
	return images, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation backend request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("generation backend returned %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
