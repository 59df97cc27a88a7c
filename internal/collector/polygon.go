package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"
)

// PolygonFetcher implements Fetcher using Polygon.io daily aggregates.
type PolygonFetcher struct {
	client *polygon.Client
	loc    *time.Location
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey string) (*PolygonFetcher, error) {
	return NewPolygonFetcherWithClient(apiKey, &http.Client{Timeout: 30 * time.Second})
}

// NewPolygonFetcherWithClient lets callers supply the HTTP client (proxies, tests).
func NewPolygonFetcherWithClient(apiKey string, hc *http.Client) (*PolygonFetcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("polygon api key is required")
	}
	// daily aggregates are stamped at midnight New York time
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &PolygonFetcher{client: polygon.NewWithClient(apiKey, hc), loc: loc}, nil
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(model.DateOf(start)),
		To:         models.Millis(model.DateOf(end)),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(50000)

	iter := f.client.ListAggs(ctx, params)
	var bars []model.OHLCV
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, model.OHLCV{
			Time:   model.DateOf(time.Time(agg.Timestamp).In(f.loc)),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeUpstream, "polygon list aggs", err)
	}

	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, apperr.Newf(apperr.ErrCodeNoData, "no data found for %s", symbol)
	}
	return bars, nil
}
