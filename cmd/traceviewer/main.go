package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/iafilius/TraceViewer/cmd/traceviewer/uihelpers"
	"github.com/iafilius/TraceViewer/src/analysis"
	"github.com/iafilius/TraceViewer/src/config"
	"github.com/iafilius/TraceViewer/src/export"
	"github.com/iafilius/TraceViewer/src/logging"
	"github.com/iafilius/TraceViewer/src/render"
	"github.com/iafilius/TraceViewer/src/trace"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	log      zerolog.Logger
	cfg      config.Config
	filePath string

	// replaced as a whole on every successful load, never mutated
	data *analysis.Dataset

	// widgets
	fileLabel    *widget.Label
	statusLabel  *widget.Label
	summaryTable *widget.Table
	detailTable  *widget.Table
	plotCanvas   *canvas.Image
	plotOverlay  *crosshairOverlay
	tabs         *container.AppTabs
}

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func main() {
	var (
		fileFlag        string
		logLevelFlag    string
		logFormatFlag   string
		configFlag      string
		screenshotsFlag string
	)
	flag.StringVar(&fileFlag, "file", "", "Path to a .tr trace file to open at start")
	flag.StringVar(&logLevelFlag, "log-level", "", "Log level: debug|info|warn|error")
	flag.StringVar(&logFormatFlag, "log-format", "", "Log format: text|json")
	flag.StringVar(&configFlag, "config", "", "Optional YAML config file")
	flag.StringVar(&screenshotsFlag, "screenshots", "", "Render preview and combined images into this directory and exit")
	flag.Parse()

	cfg, err := resolveConfig(configFlag, fileFlag, logLevelFlag, logFormatFlag, screenshotsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[viewer] %v\n", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel).With().Str("component", "viewer").Logger()

	if cfg.ScreenshotsDir != "" {
		if err := RunScreenshotsMode(cfg.FilePath, cfg.ScreenshotsDir, cfg, log); err != nil {
			log.Error().Err(err).Msg("screenshots failed")
			os.Exit(1)
		}
		log.Info().Str("dir", cfg.ScreenshotsDir).Msg("screenshots written")
		return
	}

	a := app.NewWithID("com.traceviewer.viewer")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("Trace Viewer")
	w.Resize(fyne.NewSize(1100, 800))

	state := &uiState{
		app:      a,
		window:   w,
		log:      log,
		cfg:      cfg,
		filePath: cfg.FilePath,
	}

	state.fileLabel = widget.NewLabel(uihelpers.TruncatePath(state.filePath, 60))
	state.statusLabel = widget.NewLabel("No trace loaded")

	// Summary table: header row + five metrics
	state.summaryTable = widget.NewTable(
		func() (int, int) { return summaryRowCount(state.data), 2 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(summaryCell(state.data, id.Row, id.Col))
		},
	)
	// Detail table: header row + every parsed row
	state.detailTable = widget.NewTable(
		func() (int, int) { return detailRowCount(state.data), len(trace.Columns) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(detailCell(state.data, id.Row, id.Col))
		},
	)
	applyColumnWidths(state, 1100)

	state.plotCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.plotCanvas.FillMode = canvas.ImageFillContain
	state.plotCanvas.SetMinSize(fyne.NewSize(900, 450))
	state.plotOverlay = newCrosshairOverlay(state)
	plotScroll := container.NewVScroll(container.NewStack(state.plotCanvas, state.plotOverlay))
	plotScroll.SetMinSize(fyne.NewSize(900, 650))

	state.tabs = container.NewAppTabs(
		container.NewTabItem("Summary", state.summaryTable),
		container.NewTabItem("Detail", state.detailTable),
		container.NewTabItem("Plot", plotScroll),
	)
	state.tabs.SetTabLocation(container.TabLocationTop)
	state.tabs.OnSelected = func(ti *container.TabItem) {
		if state.app != nil {
			state.app.Preferences().SetInt("selectedTabIndex", state.tabs.SelectedIndex())
		}
	}

	top := container.NewVBox(
		container.NewHBox(
			widget.NewButton("Open File", func() { openFileDialog(state) }),
			widget.NewButton("Save Summary Table", func() { saveDialog(state, export.Summary, "summary.csv") }),
			widget.NewButton("Save Detail as CSV", func() { saveDialog(state, export.Detail, "detail.csv") }),
			widget.NewButton("Save Plot", func() { saveDialog(state, export.PlotImage, "plot.png") }),
			widget.NewButton("Save Combined", func() { saveDialog(state, export.Combined, "combined.png") }),
		),
		container.NewHBox(widget.NewLabel("File:"), state.fileLabel, layout.NewSpacer(), state.statusLabel),
	)
	w.SetContent(container.NewBorder(top, nil, nil, nil, state.tabs))

	// Redraw the plot and reflow the tables on window resize
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() {
							applyColumnWidths(state, float32(curW))
							redrawPlot(state)
						})
					}
				}
			}
		}()
	}

	buildMenus(state)
	loadPrefs(state)
	if state.filePath != "" {
		loadFile(state, state.filePath)
	} else {
		redrawPlot(state)
		// nothing to show yet: ask for a trace once the window is up
		a.Lifecycle().SetOnStarted(func() { openFileDialog(state) })
	}

	w.ShowAndRun()
}

// resolveConfig layers defaults, the optional YAML file and explicit flags, in that order.
func resolveConfig(path, file, level, format, shots string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return cfg, err
		}
	}
	if file != "" {
		cfg.FilePath = file
	}
	if level != "" {
		cfg.LogLevel = level
	}
	if format != "" {
		cfg.LogFormat = format
	}
	cfg.ScreenshotsDir = shots
	return cfg, cfg.Validate()
}

// table providers

func summaryRowCount(ds *analysis.Dataset) int {
	if ds == nil {
		return 1
	}
	return len(ds.Summary.Metrics()) + 1
}

func summaryCell(ds *analysis.Dataset, row, col int) string {
	if col < 0 || col >= len(analysis.SummaryColumns) {
		return ""
	}
	if row == 0 {
		return analysis.SummaryColumns[col]
	}
	if ds == nil {
		return ""
	}
	rows := ds.Summary.Rows()
	if row-1 >= len(rows) {
		return ""
	}
	return rows[row-1][col]
}

func detailRowCount(ds *analysis.Dataset) int {
	if ds == nil {
		return 1
	}
	return len(ds.Table) + 1
}

func detailCell(ds *analysis.Dataset, row, col int) string {
	if col < 0 || col >= len(trace.Columns) {
		return ""
	}
	if row == 0 {
		return trace.Columns[col]
	}
	if ds == nil || row-1 >= len(ds.Table) {
		return ""
	}
	r := ds.Table[row-1]
	switch col {
	case 0:
		return fmt.Sprintf("%d", r.Index)
	case 1:
		return trace.FormatSeconds(r.ReceptionTime)
	case 2:
		return r.SourceNode
	case 3:
		return r.DestinationNode
	case 4:
		return r.SizeBytes
	default:
		return r.Protocol
	}
}

func applyColumnWidths(state *uiState, winW float32) {
	if state.detailTable != nil {
		for i, cw := range uihelpers.ComputeDetailColumnWidths(winW) {
			state.detailTable.SetColumnWidth(i, float32(cw))
		}
	}
	if state.summaryTable != nil {
		for i, cw := range uihelpers.ComputeSummaryColumnWidths(winW) {
			state.summaryTable.SetColumnWidth(i, float32(cw))
		}
	}
}

// chartSize computes the plot image size from the current window width.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return uihelpers.ComputeChartDimensions(1100)
	}
	sz := state.window.Canvas().Size()
	return uihelpers.ComputeChartDimensions(int(sz.Width*0.95) - 12)
}

func redrawPlot(state *uiState) {
	if state.plotCanvas == nil {
		return
	}
	var tbl trace.Table
	if state.data != nil {
		tbl = state.data.Table
	}
	cw, ch := chartSize(state)
	img, err := render.PreviewPNG(tbl, cw, ch)
	if err != nil {
		state.log.Warn().Err(err).Msg("plot preview failed")
	}
	state.plotCanvas.Image = img
	state.plotCanvas.SetMinSize(fyne.NewSize(float32(cw), float32(ch)))
	state.plotCanvas.Refresh()
	if state.plotOverlay != nil {
		state.plotOverlay.Refresh()
	}
}

// load data and render
func loadFile(state *uiState, path string) {
	ds, err := analysis.LoadWithLogger(path, state.log)
	if err != nil {
		// previous dataset stays on screen
		dialog.ShowError(loadErrorMessage(path, err), state.window)
		return
	}
	state.data = ds
	state.filePath = path
	state.fileLabel.SetText(uihelpers.TruncatePath(path, 60))
	state.statusLabel.SetText(fmt.Sprintf("%d packets, %d lines", len(ds.Table), ds.Lines))
	addRecentFile(state, path)
	savePrefs(state)
	buildMenus(state)
	state.summaryTable.Refresh()
	state.detailTable.Refresh()
	redrawPlot(state)
}

// loadErrorMessage turns a load failure into a sentence for the error dialog.
func loadErrorMessage(path string, err error) error {
	var fe *trace.FormatError
	switch {
	case errors.Is(err, analysis.ErrEmptyDataset):
		return fmt.Errorf("%s contains no packet reception events", path)
	case errors.As(err, &fe):
		return fmt.Errorf("%s is not a valid trace: line %d: %v", path, fe.Line+1, fe.Err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s does not exist", path)
	}
	return err
}

// menus and dialogs
func buildMenus(state *uiState) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(uihelpers.TruncatePath(f, 60), func() { loadFile(state, f) }))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(state); buildMenus(state) })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Summary Table…", func() { saveDialog(state, export.Summary, "summary.csv") }),
		fyne.NewMenuItem("Save Detail…", func() { saveDialog(state, export.Detail, "detail.csv") }),
		fyne.NewMenuItem("Save Plot…", func() { saveDialog(state, export.PlotImage, "plot.png") }),
		fyne.NewMenuItem("Save Combined…", func() { saveDialog(state, export.Combined, "combined.png") }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openFileDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openFileDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

// file open dialog
func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		loadFile(state, path)
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".tr"}))
	d.Show()
}

// saveDialog asks for a destination and exports the current dataset as kind.
func saveDialog(state *uiState, kind export.Kind, defaultName string) {
	if state.data == nil {
		dialog.ShowInformation("Export", "No trace loaded.", state.window)
		return
	}
	ds := state.data
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		// the dialog already created the file; export recreates it
		wc.Close()
		if err := saveAs(state, ds, kind, path); err != nil {
			os.Remove(path)
			state.log.Error().Err(err).Str("kind", kind.String()).Str("path", path).Msg("export failed")
			dialog.ShowError(err, state.window)
			return
		}
		state.log.Info().Str("kind", kind.String()).Str("path", path).Msg("exported")
		dialog.ShowInformation("Export", fmt.Sprintf("Saved %s to %s", kind, uihelpers.TruncatePath(path, 60)), state.window)
	}, state.window)
	fs.SetFilter(storage.NewExtensionFileFilter(export.Formats(kind)))
	fs.SetFileName(defaultName)
	fs.Show()
}

func saveAs(state *uiState, ds *analysis.Dataset, kind export.Kind, path string) error {
	switch kind {
	case export.Summary:
		return export.SaveSummary(path, ds.Summary)
	case export.Detail:
		return export.SaveDetail(path, ds.Table)
	case export.PlotImage:
		return export.SavePlot(path, ds.Table, render.Size{Width: state.cfg.PlotWidthInch, Height: state.cfg.PlotHeightInch})
	case export.Combined:
		return export.SaveCombined(path, ds.Table, ds.Summary)
	}
	return fmt.Errorf("%s: %w", kind, export.ErrUnsupportedFormat)
}

// recent files helpers
func recentFiles(state *uiState) []string {
	raw := state.app.Preferences().StringWithFallback("recentFiles", "")
	return filterRecent(raw, func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	})
}

// filterRecent splits the stored list and keeps the entries accepted by keep.
func filterRecent(raw string, keep func(string) bool) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || !keep(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// pushRecent puts path first and keeps at most max entries.
func pushRecent(list []string, path string, max int) []string {
	out := []string{path}
	for _, f := range list {
		if f != path && len(out) < max {
			out = append(out, f)
		}
	}
	return out
}

func addRecentFile(state *uiState, path string) {
	list := pushRecent(recentFiles(state), path, 10)
	state.app.Preferences().SetString("recentFiles", strings.Join(list, "\n"))
}

func clearRecentFiles(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("recentFiles", "")
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("lastFile", state.filePath)
	if state.tabs != nil {
		prefs.SetInt("selectedTabIndex", state.tabs.SelectedIndex())
	}
}

func loadPrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	if state.tabs != nil {
		idx := prefs.IntWithFallback("selectedTabIndex", 0)
		if idx >= 0 && idx < len(state.tabs.Items) {
			state.tabs.SelectIndex(idx)
		}
	}
}
