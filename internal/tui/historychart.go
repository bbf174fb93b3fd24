package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const maxHistory = 120

// statePoint is the container state split at one containers refresh.
type statePoint struct {
	at      time.Time
	running int
	stopped int
	failed  int
}

// recordHistory appends the current container split.
func (m *AdminModel) recordHistory(at time.Time) {
	var p statePoint
	p.at = at
	for _, c := range m.containers {
		switch state := c.State(); {
		case state == "running":
			p.running++
		case state == "error" || state == "dead":
			p.failed++
		default:
			p.stopped++
		}
	}
	m.history = append(m.history, p)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

var (
	runningBarStyle = lipgloss.NewStyle().Foreground(ColorGreen).Background(ColorGreen)
	stoppedBarStyle = lipgloss.NewStyle().Foreground(ColorGray).Background(ColorGray)
	failedBarStyle  = lipgloss.NewStyle().Foreground(ColorRed).Background(ColorRed)
	emptyBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("236"))
)

// renderHistoryChart renders container states over time as a stacked bar
// chart with a legend on the right.
func renderHistoryChart(history []statePoint, width, height int) string {
	header := "Containers over time"
	if len(history) > 0 {
		minRun, maxRun := history[0].running, history[0].running
		for _, p := range history {
			minRun = min(minRun, p.running)
			maxRun = max(maxRun, p.running)
		}
		stats := fmt.Sprintf("Running min: %d | max: %d", minRun, maxRun)
		if spacer := width - len(header) - len(stats); spacer > 0 {
			header += strings.Repeat(" ", spacer) + stats
		}
	}
	title := chartTitleStyle.Render(header)

	if len(history) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No data available"))
	}

	legendWidth := 18
	chartWidth := max(width-legendWidth-2, 20)
	chartHeight := max(height-1, 3)

	maxBars := chartWidth / 2
	start := 0
	padding := 0
	if len(history) < maxBars {
		padding = maxBars - len(history)
	} else {
		start = len(history) - maxBars
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)

	for i := 0; i < padding; i++ {
		bc.Push(barchart.BarData{
			Label:  "",
			Values: []barchart.BarValue{{Name: "EMPTY", Value: 0, Style: emptyBarStyle}},
		})
	}
	for _, p := range history[start:] {
		var values []barchart.BarValue
		if p.running > 0 {
			values = append(values, barchart.BarValue{Name: "running", Value: float64(p.running), Style: runningBarStyle})
		}
		if p.stopped > 0 {
			values = append(values, barchart.BarValue{Name: "stopped", Value: float64(p.stopped), Style: stoppedBarStyle})
		}
		if p.failed > 0 {
			values = append(values, barchart.BarValue{Name: "failed", Value: float64(p.failed), Style: failedBarStyle})
		}
		if len(values) == 0 {
			values = append(values, barchart.BarValue{Name: "EMPTY", Value: 0, Style: emptyBarStyle})
		}
		bc.Push(barchart.BarData{Label: "", Values: values})
	}
	bc.Draw()

	latest := history[len(history)-1]
	legend := lipgloss.NewStyle().Width(legendWidth).Render(strings.Join([]string{
		runningBarStyle.Render("  ") + fmt.Sprintf(" %-8s:%4d", "running", latest.running),
		stoppedBarStyle.Render("  ") + fmt.Sprintf(" %-8s:%4d", "stopped", latest.stopped),
		failedBarStyle.Render("  ") + fmt.Sprintf(" %-8s:%4d", "failed", latest.failed),
	}, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", legend))
}
