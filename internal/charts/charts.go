// Package charts renders interactive HTML charts describing a generated
// board set: per-item frequencies against their targets and the spread of
// pairwise board overlaps.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/catalog"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "1200px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// RenderFrequencyChart creates a bar chart comparing how often each item
// appears across the set with its configured target count.
func RenderFrequencyChart(cat *catalog.Catalog, set *boardgen.BoardSet, config ChartConfig, outputPath string) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
			config.Colors[1],
		}),
	)

	items := cat.Items()
	counts := set.ItemCounts()
	targets := cat.TargetCounts()

	xLabels := make([]string, len(items))
	achieved := make([]opts.BarData, len(items))
	expected := make([]opts.BarData, len(items))
	for i, item := range items {
		xLabels[i] = string(item)
		achieved[i] = opts.BarData{Value: counts[item]}
		expected[i] = opts.BarData{Value: targets[item]}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Achieved", achieved).
		AddSeries("Target", expected).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return renderToFile(bar, outputPath)
}

// RenderOverlapChart creates a bar chart of how many board pairs share each
// possible number of items. A healthy set clusters well below BoardSize;
// a bar at BoardSize would mean two identical boards.
func RenderOverlapChart(set *boardgen.BoardSet, config ChartConfig, outputPath string) error {
	if len(set.Boards) < 2 {
		return fmt.Errorf("overlap chart needs at least two boards")
	}

	dist := make(map[int]int)
	for i := 0; i < len(set.Boards); i++ {
		for j := i + 1; j < len(set.Boards); j++ {
			dist[boardgen.Overlap(set.Boards[i], set.Boards[j])]++
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
	)

	xLabels := make([]string, set.BoardSize+1)
	pairs := make([]opts.BarData, set.BoardSize+1)
	for size := 0; size <= set.BoardSize; size++ {
		xLabels[size] = fmt.Sprintf("%d", size)
		pairs[size] = opts.BarData{Value: dist[size]}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Board pairs", pairs).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return renderToFile(bar, outputPath)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderToFile(chart renderer, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
