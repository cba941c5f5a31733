package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockScreener/internal/screener"
)

// maxListed caps the symbols listed in one message; Telegram rejects
// messages longer than 4096 characters.
const maxListed = 50

// FormatScanReport formats the outcome of a scan into a Telegram message.
func FormatScanReport(out *screener.Outcome) string {
	var b strings.Builder

	day := out.StartedAt
	b.WriteString(fmt.Sprintf("📊 <b>StockScreener</b> | %s\n\n", day.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Scanned: %d | Failed: %d | Signals: %d\n", out.Scanned, out.Failed, len(out.Results)))

	if len(out.Results) == 0 {
		b.WriteString("\nNo symbol matched the rule.")
		return b.String()
	}

	b.WriteString("\n📈 <b>Matching symbols:</b>\n")
	for i, r := range out.Results {
		if i == maxListed {
			b.WriteString(fmt.Sprintf("  … and %d more\n", len(out.Results)-maxListed))
			break
		}
		b.WriteString(fmt.Sprintf("  <b>%s</b> %s: %.2f (EMA %.2f) MACD %.3f / %.3f\n",
			html.EscapeString(r.Symbol), html.EscapeString(r.Name),
			r.CurrentPrice, r.EMA200, r.MACD.MACD, r.MACD.Signal))
	}

	if out.ResultsPath != "" {
		b.WriteString(fmt.Sprintf("\nReport: %s", html.EscapeString(out.ResultsPath)))
	}
	return b.String()
}

// FormatScanError formats a failed scan.
func FormatScanError(err error) string {
	return fmt.Sprintf("❌ <b>Scan failed</b>\n\n%s", html.EscapeString(err.Error()))
}
