package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockForecast/internal/model"
)

// FormatCrossoverAlert formats a crossover that landed on the latest bar.
func FormatCrossoverAlert(ticker string, c model.Crossover, summary *model.FrameSummary) string {
	var b strings.Builder

	icon := "📈"
	if c.Kind == model.DeathCross || c.Kind == model.MomentumDown {
		icon = "📉"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s: %s</b> | %s\n\n", icon, html.EscapeString(ticker), c.Label(), c.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("MA%d crossed MA%d at close %.2f\n", c.Fast, c.Slow, c.Close))
	if summary != nil {
		writeSummary(&b, summary)
	}
	b.WriteString("\n<i>Informational only, not investment advice.</i>")
	return b.String()
}

// FormatSummary formats headline figures for a command reply.
func FormatSummary(ticker string, summary *model.FrameSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(ticker), summary.LastDate.Format("2006-01-02")))
	writeSummary(&b, summary)
	return b.String()
}

// FormatForecast formats the forecast tail for a command reply.
func FormatForecast(ticker string, years int, tail []model.ForecastRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔮 <b>%s</b> forecast, %d year(s)\n\n", html.EscapeString(ticker), years))
	for _, r := range tail {
		b.WriteString(fmt.Sprintf("%s  %.2f  [%.2f, %.2f]\n", r.DS.Format("2006-01-02"), r.YHat, r.YHatLower, r.YHatUpper))
	}
	return b.String()
}

func writeSummary(b *strings.Builder, s *model.FrameSummary) {
	b.WriteString(fmt.Sprintf("Close: %.2f\n", s.LastClose))
	for _, ma := range []struct {
		name string
		v    *float64
	}{{"MA50", s.MA50}, {"MA100", s.MA100}, {"MA200", s.MA200}} {
		if ma.v != nil {
			b.WriteString(fmt.Sprintf("%s: %.2f\n", ma.name, *ma.v))
		}
	}
	b.WriteString(fmt.Sprintf("52w: %.2f ~ %.2f (%.0f%%)\n", s.Low52w, s.High52w, s.Position52w*100))
	for _, a := range s.Alignment {
		b.WriteString("• " + a + "\n")
	}
}

// Help lists the bot commands.
func Help() string {
	return "Commands:\n• /summary TICKER\n• /forecast TICKER [years]"
}
