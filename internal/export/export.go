// Package export writes a price frame with its moving averages to CSV or Parquet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/moznion/go-optional"
	"github.com/parquet-go/parquet-go"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates an export extension.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatParquet:
		return Format(s), nil
	}
	return "", apperr.Newf(apperr.ErrCodeInvalidParameter, "unsupported export format %q", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv; charset=utf-8"
}

// Row is one exported trading day.
type Row struct {
	Date   string   `parquet:"date"`
	Open   float64  `parquet:"open"`
	High   float64  `parquet:"high"`
	Low    float64  `parquet:"low"`
	Close  float64  `parquet:"close"`
	Volume float64  `parquet:"volume"`
	MA50   *float64 `parquet:"ma50,optional"`
	MA100  *float64 `parquet:"ma100,optional"`
	MA200  *float64 `parquet:"ma200,optional"`
}

var header = []string{"Date", "Open", "High", "Low", "Close", "Volume", "MA50", "MA100", "MA200"}

func ptr(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}

// Rows converts the frame to export rows.
func Rows(frame *model.PriceFrame) []Row {
	out := make([]Row, len(frame.Rows))
	for i, r := range frame.Rows {
		out[i] = Row{
			Date:   r.Date.Format("2006-01-02"),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			MA50:   ptr(r.MA50),
			MA100:  ptr(r.MA100),
			MA200:  ptr(r.MA200),
		}
	}
	return out
}

// Write encodes frame to w in format f.
func Write(w io.Writer, f Format, frame *model.PriceFrame) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, frame)
	case FormatParquet:
		return WriteParquet(w, frame)
	}
	return apperr.Newf(apperr.ErrCodeInvalidParameter, "unsupported export format %q", f)
}

// WriteCSV writes a header and one line per row. Undefined averages are empty.
func WriteCSV(w io.Writer, frame *model.PriceFrame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range Rows(frame) {
		if err := cw.Write([]string{
			r.Date,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.Volume),
			optStr(r.MA50),
			optStr(r.MA100),
			optStr(r.MA200),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParquet writes the rows as a single Parquet file. Undefined averages are null.
func WriteParquet(w io.Writer, frame *model.PriceFrame) error {
	if err := parquet.Write(w, Rows(frame)); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optStr(v *float64) string {
	if v == nil {
		return ""
	}
	return floatStr(*v)
}
