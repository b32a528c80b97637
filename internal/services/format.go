package services

import (
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"agridash/internal/config"
)

var printer = message.NewPrinter(language.English)

// formatCount renders a whole number with thousands separators.
func formatCount(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// formatDecimal renders v with thousands separators and the given decimals.
func formatDecimal(v float64, decimals int) string {
	return printer.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
}

// formatFixed renders v with the given decimals and no grouping.
func formatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// formatPercent renders v with the given decimals and a percent sign.
func formatPercent(v float64, decimals int) string {
	return formatFixed(v, decimals) + "%"
}

// formatCompact abbreviates large volumes: 1.2M, 3.4K, or the plain value.
func formatCompact(v float64) string {
	switch {
	case v >= 1_000_000:
		return formatFixed(v/1_000_000, 1) + "M"
	case v >= 1_000:
		return formatFixed(v/1_000, 1) + "K"
	default:
		return formatFixed(v, 0)
	}
}

// WrapTitle breaks a chart title into lines of at most config.TitleWidth
// columns joined with <br>.
func WrapTitle(title string) string {
	wrapped := wordwrap.String(title, config.TitleWidth)
	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "<br>")
}
