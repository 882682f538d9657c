package view

import (
	"io"
	"strings"

	"github.com/erp/dashboard/internal/domain/shared"
)

// FormatMetric renders one figure, as currency when the metric is money
func FormatMetric(m shared.Metric) string {
	if m.Money {
		return FormatCurrency(m.Value)
	}
	return FormatNumber(m.Value)
}

// RenderStats writes the stat cards of a list as a single line. Nil stats write nothing.
func RenderStats(w io.Writer, stats shared.Stats) error {
	if stats == nil {
		return nil
	}
	metrics := stats.Metrics()
	if len(metrics) == 0 {
		return nil
	}
	cards := make([]string, 0, len(metrics))
	for _, m := range metrics {
		cards = append(cards, m.Label+": "+FormatMetric(m))
	}
	_, err := io.WriteString(w, strings.Join(cards, " | ")+"\n")
	return err
}
