package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockForecast/internal/apperr"
)

const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","gmtoffset":-14400},
  "timestamp":[1704292200,1704205800,1704378600,1704378600,1704465000],
  "indicators":{"quote":[{
    "open":  [184.2, 187.1, 182.1, 182.2, null],
    "high":  [185.8, 188.4, 183.0, 183.1, null],
    "low":   [183.4, 183.8, 180.8, 180.9, null],
    "close": [184.25, 185.64, 181.91, 181.18, null],
    "volume":[58414500, 82488700, 71983600, 71983601, null]
  }]}
}],"error":null}}`

func TestYahooFetcher_ParsesSortsAndDedupes(t *testing.T) {
	var seen *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(context.Background())
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	f.Client = srv.Client()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchDaily(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "/v8/finance/chart/AAPL", seen.URL.Path)
	assert.Equal(t, "1d", seen.URL.Query().Get("interval"))
	assert.Equal(t, "1704067200", seen.URL.Query().Get("period1"))
	assert.Equal(t, "1704499200", seen.URL.Query().Get("period2"))
	assert.Equal(t, "Mozilla/5.0", seen.Header.Get("User-Agent"))

	// null row dropped, duplicate date keeps the later print, ascending order
	require.Len(t, bars, 3)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 185.64, bars[0].Close)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Time)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), bars[2].Time)
	assert.Equal(t, 181.18, bars[2].Close)
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDaily(context.Background(), "SPX500", time.Now(), time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/%5EGSPC"), path)
}

func TestYahooFetcher_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   apperr.ErrorCode
	}{
		{
			name:   "unknown symbol",
			status: http.StatusNotFound,
			body:   `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			code:   apperr.ErrCodeNoData,
		},
		{
			name:   "api error",
			status: http.StatusBadRequest,
			body:   `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`,
			code:   apperr.ErrCodeUpstream,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			code:   apperr.ErrCodeUpstream,
		},
		{
			name:   "garbage body",
			status: http.StatusOK,
			body:   `not json`,
			code:   apperr.ErrCodeUpstream,
		},
		{
			name:   "empty result",
			status: http.StatusOK,
			body:   `{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`,
			code:   apperr.ErrCodeNoData,
		},
		{
			name:   "all null closes",
			status: http.StatusOK,
			body:   `{"chart":{"result":[{"meta":{},"timestamp":[1704292200],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`,
			code:   apperr.ErrCodeNoData,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("")
			f.BaseURL = srv.URL
			_, err := f.FetchDaily(context.Background(), "ZZZZ", time.Now(), time.Now())
			require.Error(t, err)
			assert.Equal(t, tc.code, apperr.GetCode(err), err.Error())
		})
	}
}

func TestYahooFetcher_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = url
	_, err := f.FetchDaily(context.Background(), "AAPL", time.Now(), time.Now())
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeUpstream))
}

func TestNewTransport(t *testing.T) {
	plain := newTransport("")
	require.NotNil(t, plain.Proxy)
	assert.NotZero(t, plain.TLSHandshakeTimeout)

	proxied := newTransport("http://proxy.local:3128")
	u, err := proxied.Proxy(httptest.NewRequest(http.MethodGet, "https://query1.finance.yahoo.com/", nil))
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)

	f := NewYahooFetcher("")
	assert.Equal(t, 30*time.Second, f.Client.Timeout)
}
