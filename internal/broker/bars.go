package broker

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// barsPageLimit is the maximum page size the data API accepts.
const barsPageLimit = 10000

// GetIntradayBars fetches 1-minute bars for a symbol between start and
// end, paginating until the API reports no further pages. Bars are
// split-adjusted to match what charting consumers expect.
func (c *Client) GetIntradayBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	var all []Bar
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("timeframe", "1Min")
		query.Set("start", start.Format(time.RFC3339))
		query.Set("end", end.Format(time.RFC3339))
		query.Set("adjustment", "split")
		query.Set("limit", fmt.Sprintf("%d", barsPageLimit))
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var resp barsResponse
		if err := c.get(ctx, c.dataURL, "/v2/stocks/"+symbol+"/bars", query, &resp); err != nil {
			return nil, fmt.Errorf("get bars %s: %w", symbol, err)
		}

		all = append(all, resp.Bars...)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return all, nil
}
