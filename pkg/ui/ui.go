// Package ui renders scanner output for the terminal: the startup banner,
// styled per-URL results, and the end-of-scan summary. A ConsolePrinter
// can also be attached to the event stream to mirror scan progress live.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dorkscan/dorkscan/pkg/broadcast"
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/events"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

const banner = `
     _            _
  __| | ___  _ __| | _____  ___ __ _ _ __
 / _' |/ _ \| '__| |/ / __|/ __/ _' | '_ \
| (_| | (_) | |  |   <\__ \ (_| (_| | | | |
 \__,_|\___/|_|  |_|\_\___/\___\__,_|_| |_|
`

// PrintBanner writes the startup banner with the version badge.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, BannerStyle.Render(banner))
	fmt.Fprintf(w, "  %s %s\n\n",
		MutedStyle.Render("exposure scanner"),
		VersionStyle.Render("v"+defaults.Version))
}

// PrintResult writes one scan result with its findings.
func PrintResult(w io.Writer, result finding.ScanResult) {
	fmt.Fprintf(w, "%s %s %s\n",
		RiskStyle(string(result.RiskLevel)).Render(string(result.RiskLevel)),
		URLStyle.Render(result.URL),
		MutedStyle.Render(fmt.Sprintf("(score %d)", result.RiskScore)))

	for _, f := range result.Findings {
		line := fmt.Sprintf("  %s %s", f.Type, MutedStyle.Render(truncate(f.Match, 60)))
		if f.Severity != "" {
			line += " " + SeverityStyle(string(f.Severity)).Render(string(f.Severity))
		}
		fmt.Fprintln(w, line)
	}
}

// PrintSummary writes the aggregate counts after a scan completes.
func PrintSummary(w io.Writer, bundle *events.FinalBundle) {
	fmt.Fprintln(w, SectionStyle.Render("Scan summary"))

	rows := []struct {
		label string
		value int
	}{
		{"URLs found", bundle.Stats.URLsFound},
		{"URLs scanned", bundle.Stats.URLsScanned},
		{"High risk", bundle.Stats.HighRisk},
		{"Medium risk", bundle.Stats.MediumRisk},
		{"Low risk", bundle.Stats.LowRisk},
	}
	if bundle.Stats.TotalDorks > 0 {
		rows = append([]struct {
			label string
			value int
		}{{"Dorks run", bundle.Stats.TotalDorks}}, rows...)
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n",
			StatLabelStyle.Render(fmt.Sprintf("%-14s", row.label)),
			StatValueStyle.Render(fmt.Sprintf("%d", row.value)))
	}

	if bundle.Reports.JSONPath != "" {
		fmt.Fprintf(w, "  %s %s, %s\n",
			StatLabelStyle.Render(fmt.Sprintf("%-14s", "Reports")),
			bundle.Reports.JSONPath, bundle.Reports.CSVPath)
	}
}

// ConsolePrinter mirrors the live event stream to a terminal. It
// implements broadcast.Subscriber.
type ConsolePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ broadcast.Subscriber = (*ConsolePrinter)(nil)

// NewConsolePrinter creates a printer writing to w.
func NewConsolePrinter(w io.Writer) *ConsolePrinter {
	return &ConsolePrinter{w: w}
}

// Send implements broadcast.Subscriber.
func (p *ConsolePrinter) Send(ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case events.LogEvent:
		fmt.Fprintln(p.w, MutedStyle.Render(e.Message))
	case events.ResultEvent:
		PrintResult(p.w, e.Result)
	case events.OSINTEvent:
		if e.Footprint != nil && e.Footprint.Enabled {
			fmt.Fprintf(p.w, "%s %s: %d open ports, %d high-risk services\n",
				WarnStyle.Render("[osint]"),
				e.Footprint.Domain, len(e.Footprint.Ports), len(e.Footprint.Exposures))
		}
	case events.FinalResultsEvent:
		PrintSummary(p.w, &e.Bundle)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
