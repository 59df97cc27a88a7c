package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"StockForecast/internal/dashboard"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

func num(v float64) string { return fmt.Sprintf("%.2f", v) }

func optNum(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}

// renderForecast lays out the summary and forecast tail for a terminal.
func renderForecast(d *dashboard.Dashboard) string {
	var b strings.Builder
	s := d.Summary

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d year(s) ahead", d.Ticker, d.Years)) + "\n\n")
	b.WriteString(fmt.Sprintf("Last close %s on %s\n", num(s.LastClose), s.LastDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("MA50 %s  MA100 %s  MA200 %s\n", optNum(s.MA50), optNum(s.MA100), optNum(s.MA200)))
	b.WriteString(fmt.Sprintf("52w range %s ~ %s (%.0f%%)\n", num(s.Low52w), num(s.High52w), s.Position52w*100))
	for _, a := range s.Alignment {
		b.WriteString("  " + a + "\n")
	}
	for _, c := range d.RecentCrossovers(3) {
		b.WriteString(fmt.Sprintf("  %s on %s\n", c.Label(), c.Date.Format("2006-01-02")))
	}
	b.WriteString("\n")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ds", "trend", "yhat_lower", "yhat_upper", "yearly", "weekly", "yhat").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		})
	for _, r := range d.Tail {
		t.Row(r.DS.Format("2006-01-02"), num(r.Trend), num(r.YHatLower), num(r.YHatUpper),
			num(r.Yearly), num(r.Weekly), num(r.YHat))
	}
	b.WriteString(t.String() + "\n")
	b.WriteString(helpStyle.Render("Informational only, not investment advice."))
	return b.String()
}
