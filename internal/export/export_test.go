package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"
)

func testFrame() *model.PriceFrame {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &model.PriceFrame{Symbol: "AAPL", Rows: []model.PriceRow{
		{Date: d, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100,
			MA50: optional.None[float64](), MA100: optional.None[float64](), MA200: optional.None[float64]()},
		{Date: d.AddDate(0, 0, 1), Open: 1.5, High: 2.5, Low: 1, Close: 2.25, Volume: 200,
			MA50: optional.Some(1.875), MA100: optional.None[float64](), MA200: optional.None[float64]()},
	}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	f, err = ParseFormat("parquet")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.apache.parquet", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidParameter))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, testFrame()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"2024-01-02", "1", "2", "0.5", "1.5", "100", "", "", ""}, records[1])
	assert.Equal(t, "1.875", records[2][6])
	assert.Equal(t, "", records[2][8])
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatParquet, testFrame()))

	rows, err := parquet.Read[Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-03", rows[1].Date)
	assert.Equal(t, 2.25, rows[1].Close)
	assert.Nil(t, rows[0].MA50)
	require.NotNil(t, rows[1].MA50)
	assert.Equal(t, 1.875, *rows[1].MA50)
	assert.Nil(t, rows[1].MA200)
}
