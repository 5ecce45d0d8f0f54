package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/nikpietanze/Pressr/internal/metrics"
	"github.com/nikpietanze/Pressr/internal/threshold"
)

// htmlReportData feeds the report template.
type htmlReportData struct {
	GeneratedAt string
	Metadata    ReportMetadata
	Summary     metrics.Summary
	Thresholds  []threshold.Result
	Passed      int
	Failed      int
	Percentiles []percentileBar
	ChartHeight int
	Transfer    string
	StatusRows  []statusRow
	ErrorRows   []errorRow
}

// percentileBar is one row of the latency chart. Width is a percentage
// of the max latency so the bars render as an inline SVG without any
// script dependency.
type percentileBar struct {
	Label   string
	Value   string
	Width   float64
	Y       int
	LabelY  int
	BarFill string
}

type statusRow struct {
	Code  int
	Count int64
	Class string
}

type errorRow struct {
	Kind   metrics.ErrorKind
	Count  int64
	Sample string
}

// GenerateHTMLReport renders a standalone HTML report to w.
func GenerateHTMLReport(w io.Writer, summary metrics.Summary, results []threshold.Result, metadata ReportMetadata) error {
	data := htmlReportData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Metadata:    metadata,
		Summary:     summary,
		Thresholds:  results,
		Percentiles: percentileBars(summary),
		StatusRows:  statusRows(summary),
		ErrorRows:   errorRows(summary),
	}
	data.ChartHeight = len(data.Percentiles) * 36
	if summary.BytesKnown {
		data.Transfer = formatBytes(int64(summary.TransferRate))
	}
	for _, r := range results {
		if r.Pass {
			data.Passed++
		} else {
			data.Failed++
		}
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatLatency": formatLatency,
		"formatBytes":   formatBytes,
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(f float64) string {
			return fmt.Sprintf("%.1f", f*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHTMLReport writes the report to path, holding a sibling lock
// file for the duration so concurrent runs pointed at the same report
// path do not interleave writes.
func WriteHTMLReport(path string, summary metrics.Summary, results []threshold.Result, metadata ReportMetadata) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := GenerateHTMLReport(f, summary, results, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func percentileBars(summary metrics.Summary) []percentileBar {
	if summary.Total == 0 {
		return nil
	}

	entries := []struct {
		label string
		value time.Duration
	}{
		{"Min", summary.MinLatency},
		{"P50", summary.P50Latency},
		{"P90", summary.P90Latency},
		{"P95", summary.P95Latency},
		{"P99", summary.P99Latency},
		{"Max", summary.MaxLatency},
	}

	// Bars render into a fixed 620 unit track next to the labels.
	max := summary.MaxLatency
	bars := make([]percentileBar, 0, len(entries))
	for i, e := range entries {
		width := 620.0
		if max > 0 {
			width = float64(e.value) / float64(max) * 620
		}
		if width < 6 {
			width = 6
		}
		fill := "#667eea"
		if e.label == "P99" || e.label == "Max" {
			fill = "#f59e0b"
		}
		bars = append(bars, percentileBar{
			Label:   e.label,
			Value:   formatLatency(e.value),
			Width:   width,
			Y:       i * 36,
			LabelY:  i*36 + 20,
			BarFill: fill,
		})
	}
	return bars
}

func statusRows(summary metrics.Summary) []statusRow {
	rows := make([]statusRow, 0, len(summary.StatusCounts))
	for _, code := range sortedStatusCodes(summary.StatusCounts) {
		class := "ok"
		switch {
		case code >= 500:
			class = "server-error"
		case code >= 400:
			class = "client-error"
		case code >= 300:
			class = "redirect"
		}
		rows = append(rows, statusRow{Code: code, Count: summary.StatusCounts[code], Class: class})
	}
	return rows
}

func errorRows(summary metrics.Summary) []errorRow {
	rows := make([]errorRow, 0, len(summary.ErrorCounts))
	for _, kind := range sortedErrorKinds(summary.ErrorCounts) {
		rows = append(rows, errorRow{
			Kind:   kind,
			Count:  summary.ErrorCounts[kind],
			Sample: summary.ErrorSamples[kind],
		})
	}
	return rows
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Pressr Load Test Report</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
    background: #f5f7fa;
    color: #2c3e50;
    line-height: 1.6;
    padding: 20px;
}
.container {
    max-width: 1100px;
    margin: 0 auto;
    background: white;
    border-radius: 8px;
    box-shadow: 0 2px 8px rgba(0,0,0,0.1);
    overflow: hidden;
}
header {
    background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
    color: white;
    padding: 30px 40px;
}
header h1 { font-size: 2rem; margin-bottom: 10px; }
header .meta { opacity: 0.9; font-size: 0.9rem; }
.content { padding: 40px; }
.grid {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
    gap: 20px;
    margin-bottom: 40px;
}
.card {
    background: #f8f9fa;
    border-radius: 8px;
    padding: 20px;
    border-left: 4px solid #667eea;
}
.card h3 {
    font-size: 0.9rem;
    color: #6c757d;
    text-transform: uppercase;
    letter-spacing: 0.5px;
    margin-bottom: 10px;
}
.card .value { font-size: 2rem; font-weight: bold; color: #2c3e50; }
.card .subvalue { font-size: 0.85rem; color: #6c757d; margin-top: 5px; }
.card.success { border-left-color: #10b981; }
.card.error { border-left-color: #ef4444; }
.section { margin-bottom: 40px; }
.section h2 {
    font-size: 1.3rem;
    margin-bottom: 20px;
    padding-bottom: 10px;
    border-bottom: 2px solid #e9ecef;
}
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 10px 14px; border-bottom: 1px solid #e9ecef; }
th { font-size: 0.85rem; color: #6c757d; text-transform: uppercase; }
tr.server-error td, tr.client-error td:first-child { color: #ef4444; }
.pass { color: #10b981; font-weight: bold; }
.fail { color: #ef4444; font-weight: bold; }
.banner {
    padding: 12px 20px;
    border-radius: 6px;
    margin-bottom: 20px;
    background: #fef3c7;
    color: #92400e;
}
</style>
</head>
<body>
<div class="container">
    <header>
        <h1>Pressr Load Test Report</h1>
        <div class="meta">
            Run {{.Metadata.RunID}} &middot; {{.Metadata.Method}} {{.Metadata.TargetURL}}<br>
            {{.Metadata.Requested}} requests at concurrency {{.Metadata.Concurrency}} &middot; generated {{.GeneratedAt}}
        </div>
    </header>
    <div class="content">
        {{if .Summary.Interrupted}}
        <div class="banner">Run interrupted: {{.Summary.Total}} of {{.Summary.Requested}} requests completed.</div>
        {{end}}
        <div class="grid">
            <div class="card">
                <h3>Requests</h3>
                <div class="value">{{.Summary.Total}}</div>
                <div class="subvalue">{{formatFloat .Summary.RequestsPerSec}} req/s over {{.Summary.Duration}}</div>
            </div>
            <div class="card success">
                <h3>Successful</h3>
                <div class="value">{{.Summary.Successes}}</div>
                <div class="subvalue">{{formatPercent .Summary.SuccessRate}}% success rate</div>
            </div>
            <div class="card error">
                <h3>Failed</h3>
                <div class="value">{{.Summary.Failures}}</div>
            </div>
            {{if .Summary.BytesKnown}}
            <div class="card">
                <h3>Data Received</h3>
                <div class="value">{{formatBytes .Summary.TotalBytes}}</div>
                <div class="subvalue">{{.Transfer}}/s</div>
            </div>
            {{end}}
        </div>

        {{if .Percentiles}}
        <div class="section">
            <h2>Latency</h2>
            <svg viewBox="0 0 700 {{.ChartHeight}}" width="100%" role="img">
                {{range .Percentiles}}
                <text x="0" y="{{.LabelY}}" font-size="14" fill="#2c3e50">{{.Label}}</text>
                <rect x="60" y="{{.Y}}" rx="4" height="26" width="{{.Width}}" fill="{{.BarFill}}" opacity="0.85">
                    <title>{{.Label}}: {{.Value}}</title>
                </rect>
                <text x="65" y="{{.LabelY}}" font-size="13" fill="#ffffff">{{.Value}}</text>
                {{end}}
            </svg>
            <table>
                <tr><th>Mean</th><th>Std Dev</th><th>Min</th><th>Max</th></tr>
                <tr>
                    <td>{{formatLatency .Summary.MeanLatency}}</td>
                    <td>{{formatLatency .Summary.StdDevLatency}}</td>
                    <td>{{formatLatency .Summary.MinLatency}}</td>
                    <td>{{formatLatency .Summary.MaxLatency}}</td>
                </tr>
            </table>
        </div>
        {{end}}

        {{if .StatusRows}}
        <div class="section">
            <h2>Status Codes</h2>
            <table>
                <tr><th>Code</th><th>Count</th></tr>
                {{range .StatusRows}}<tr class="{{.Class}}"><td>{{.Code}}</td><td>{{.Count}}</td></tr>
                {{end}}
            </table>
        </div>
        {{end}}

        {{if .ErrorRows}}
        <div class="section">
            <h2>Errors</h2>
            <table>
                <tr><th>Kind</th><th>Count</th><th>Sample</th></tr>
                {{range .ErrorRows}}<tr><td>{{.Kind}}</td><td>{{.Count}}</td><td>{{.Sample}}</td></tr>
                {{end}}
            </table>
        </div>
        {{end}}

        {{if .Thresholds}}
        <div class="section">
            <h2>Thresholds ({{.Passed}} passed, {{.Failed}} failed)</h2>
            <table>
                <tr><th>Assertion</th><th>Actual</th><th>Result</th></tr>
                {{range .Thresholds}}<tr>
                    <td>{{.Threshold.Raw}}</td>
                    <td>{{formatFloat .Actual}}</td>
                    <td>{{if .Pass}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
                </tr>
                {{end}}
            </table>
        </div>
        {{end}}
    </div>
</div>
</body>
</html>`
