package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// GetAsset fetches metadata for a symbol. An unknown symbol (404) is
// not an error: the broker legitimately has no record of it, so a
// placeholder is returned and the caller keeps going.
func (c *Client) GetAsset(ctx context.Context, symbol string) (Asset, error) {
	var asset Asset
	err := c.get(ctx, c.apiURL, "/v2/assets/"+symbol, nil, &asset)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return UnknownAsset(symbol), nil
		}
		return Asset{}, fmt.Errorf("get asset %s: %w", symbol, err)
	}

	if asset.Symbol == "" {
		asset.Symbol = symbol
	}
	return asset, nil
}

// UnknownAsset is the placeholder served for symbols the broker does
// not know about.
func UnknownAsset(symbol string) Asset {
	return Asset{
		Symbol:   symbol,
		Name:     "Unknown",
		Exchange: "Unknown",
		Status:   "unknown",
		Tradable: false,
	}
}
