package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/lockbench/internal/metrics"
)

const historySize = 100

// RunConfig holds benchmark parameters for display.
type RunConfig struct {
	Tasks      int           // Tasks per strategy
	Work       time.Duration // Duration of each work unit
	Workload   string        // sleep or spin
	Strategies []string      // Strategy keys in run order
	Deadline   time.Duration // Per-strategy deadline (0 = none)
	Procs      int           // GOMAXPROCS for the run
	ConfigFile string        // Path to config file if used
}

// Dashboard renders a live terminal UI for benchmark progress.
type Dashboard struct {
	tracker      *metrics.Tracker
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	summaryPara    *widgets.Paragraph
	progressGauge  *widgets.Gauge
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	finishedList   *widgets.List
	meanHistory    []float64
	runConfig      RunConfig
}

// New creates a new Dashboard.
func New(tracker *metrics.Tracker, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		tracker:      tracker,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		meanHistory:  make([]float64, 0, historySize),
		runConfig:    cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.progressGauge = widgets.NewGauge()
	d.progressGauge.Title = "Settled Tasks"
	d.progressGauge.Percent = 0
	d.progressGauge.BarColor = ui.ColorBlue
	d.progressGauge.BorderStyle.Fg = ui.ColorCyan
	d.progressGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	sparkline := widgets.NewSparkline()
	sparkline.Title = "Mean task duration (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Task Duration"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Duration Stats"
	d.latencyPara.Text = "Mean: 0ms\nP50: 0ms\nP99: 0ms\nMax: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.finishedList = widgets.NewList()
	d.finishedList.Title = "Finished Strategies"
	d.finishedList.Rows = []string{"Awaiting first strategy"}
	d.finishedList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.finishedList.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.18,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.progressGauge),
		),
		ui.NewRow(0.34,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.34,
			ui.NewCol(1.0, d.finishedList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the tracker.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applySnapshot(d.tracker.Snapshot())
}

func (d *Dashboard) applySnapshot(snap metrics.Snapshot) {
	meanMs := toMs(snap.Mean)
	if snap.Mean > 0 {
		d.meanHistory = append(d.meanHistory, meanMs)
		if len(d.meanHistory) > historySize {
			d.meanHistory = d.meanHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.meanHistory
		d.latencySparkle.Title = fmt.Sprintf("Task Duration | Mean: %.2fms | Max: %.2fms", meanMs, toMs(snap.Max))
	}

	percent := 0
	if snap.Tasks > 0 {
		percent = int(snap.Completed * 100 / snap.Tasks)
	}
	if percent > 100 {
		percent = 100
	}
	d.progressGauge.Percent = percent
	d.progressGauge.Label = fmt.Sprintf("%d/%d tasks | %.1f tasks/s | %d failed", snap.Completed, snap.Tasks, snap.TasksPerSec, snap.Failed)

	d.summaryPara.Text = fmt.Sprintf(
		"Strategy: %s (%d of %d)\n%s\nElapsed: %s",
		snap.Strategy,
		min(len(snap.Finished)+1, max(len(d.runConfig.Strategies), 1)),
		max(len(d.runConfig.Strategies), 1),
		d.formatRunParams(),
		snap.Elapsed.Round(100*time.Millisecond),
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Mean: %s\nP50:  %s\nP99:  %s\nMax:  %s",
		formatDuration(snap.Mean),
		formatDuration(snap.P50),
		formatDuration(snap.P99),
		formatDuration(snap.Max),
	)

	d.finishedList.Rows = formatFinishedRows(snap.Finished)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func formatFinishedRows(done []metrics.Summary) []string {
	if len(done) == 0 {
		return []string{"[Awaiting first strategy](fg:green)"}
	}
	rows := make([]string, 0, len(done))
	for _, s := range done {
		row := fmt.Sprintf("[%s](fg:cyan) | Wall %s | Sum %s | Min %s | Max %s",
			s.Strategy,
			formatDuration(s.Wall),
			formatDuration(s.Sum),
			formatDuration(s.Min),
			formatDuration(s.Max),
		)
		if s.Failures > 0 {
			row += fmt.Sprintf(" | [%d failed](fg:red)", s.Failures)
		}
		rows = append(rows, row)
	}
	return rows
}

func formatDuration(d time.Duration) string {
	ms := toMs(d)
	if ms >= 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fms", ms)
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// formatRunParams formats the benchmark parameters for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.runConfig.Tasks > 0 {
		parts = append(parts, fmt.Sprintf("Tasks: %d", d.runConfig.Tasks))
	}

	workload := d.runConfig.Workload
	if workload == "" {
		workload = "sleep"
	}
	parts = append(parts, fmt.Sprintf("Work: %s %s", workload, d.runConfig.Work))

	if d.runConfig.Deadline > 0 {
		parts = append(parts, fmt.Sprintf("Deadline: %s", d.runConfig.Deadline))
	}

	if d.runConfig.Procs > 0 {
		parts = append(parts, fmt.Sprintf("GOMAXPROCS: %d", d.runConfig.Procs))
	}

	if len(d.runConfig.Strategies) > 0 {
		parts = append(parts, fmt.Sprintf("Strategies: %s", strings.Join(d.runConfig.Strategies, ", ")))
	}

	// Config file (only show if used)
	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
