// Package tui provides a Bubble Tea terminal user interface for suno-downloader.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/handiism/suno-downloader/internal/browser"
	"github.com/handiism/suno-downloader/internal/config"
	"github.com/handiism/suno-downloader/internal/download"
	"github.com/handiism/suno-downloader/internal/suno"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F97316")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// maxSongsShown bounds the song list while downloading.
const maxSongsShown = 8

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// sender delivers messages to the running program. Model is copied on
// every update, so the program is reached through a shared pointer.
type sender struct {
	program *tea.Program
}

func (s *sender) send(msg tea.Msg) {
	if s != nil && s.program != nil {
		s.program.Send(msg)
	}
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	songs     []string
	err       error
	out       *sender

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager  *download.Manager
	renderer *browser.Renderer

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64
	stats           download.Stats

	// Options
	useBrowser  bool
	libraryMode bool
	playlist    bool
	verbose     bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = settings.URLFile + "  or  https://suno.com/song/..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		out:       &sender{},
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Songs    []string
		Manager  *download.Manager
		Renderer *browser.Renderer
		Err      error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Received int64
		Total    int64
		Files    int32
		TotalF   int32
		Stats    download.Stats
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.closeRenderer()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && (m.libraryMode || strings.TrimSpace(m.textInput.Value()) != "") {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "f2":
			if m.state == StateInput {
				m.useBrowser = !m.useBrowser
			}

		case "f3":
			if m.state == StateInput {
				m.libraryMode = !m.libraryMode
			}

		case "f4":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "f5":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		m.renderer = msg.Renderer
		if m.state != StateInitializing {
			// cancelled while starting up
			m.closeRenderer()
			return m, nil
		}
		if msg.Err != nil {
			m.closeRenderer()
			m.state = StateError
			m.err = msg.Err
			if m.ctx.Err() != nil {
				m.err = errCancelled
			}
		} else {
			m.songs = msg.Songs
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.closeRenderer()
		m.receivedBytes = msg.Received
		m.totalBytes = msg.Total
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		m.stats = msg.Stats
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			received, total, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.totalBytes = total
			m.downloadedFiles = files
			m.totalFiles = totalFiles

			var percent float64
			if totalFiles > 0 {
				percent = float64(files) / float64(totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.songs = nil
	m.err = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.totalBytes = 0
	m.stats = download.Stats{}
	m.manager = nil
	m.renderer = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m *Model) closeRenderer() {
	if m.renderer != nil {
		m.renderer.Close()
		m.renderer = nil
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ Suno Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Save songs and lyrics from Suno"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	if m.libraryMode {
		b.WriteString(subtitleStyle.Render("Library mode: songs are collected from " + m.settings.LibraryURL))
		b.WriteString("\n\n")
	} else {
		b.WriteString(subtitleStyle.Render("Enter a URL list file or a song URL:"))
		b.WriteString("\n\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Render pages in a browser (F2)\n", checkbox(m.useBrowser))
	fmt.Fprintf(&b, "  %s Library mode (F3)\n", checkbox(m.libraryMode))
	fmt.Fprintf(&b, "  %s Create playlist (F4)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose/debug output (F5)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.libraryMode {
		b.WriteString(subtitleStyle.Render("Scrolling through library..."))
	} else {
		b.WriteString(subtitleStyle.Render("Fetching song pages..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.songs) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d song(s):", len(m.songs))))
		b.WriteString("\n")
		for i, song := range m.songs {
			if i == maxSongsShown {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.songs)-maxSongsShown)))
				b.WriteString("\n")
				break
			}
			b.WriteString(songStyle.Render(fmt.Sprintf("  ♪ %s", song)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Done!\n\n"+
			"Songs: %d\n"+
			"Written: %d | Skipped: %d | Missing: %d | Failed: %d\n"+
			"Size: %.2f MB",
		len(m.songs),
		m.stats.Written, m.stats.Skipped, m.stats.Missing, m.stats.Failed,
		float64(m.receivedBytes)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • F2: browser • F3: library • F4: playlist • F5: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// resolveURLs turns the input into a URL list: a song URL is used as is,
// anything else is read as a URL list file.
func resolveURLs(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return []string{input}, nil
	}
	return suno.ReadURLList(input)
}

// initializeDownload reads the input, starts the browser if needed and
// creates the manager.
func (m *Model) initializeDownload() tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	input := m.textInput.Value()
	useBrowser := m.useBrowser || m.libraryMode
	libraryMode := m.libraryMode
	ctx := m.ctx
	out := m.out

	return func() tea.Msg {
		onProgress := func(event download.ProgressEvent) {
			out.send(ProgressMsg{Event: event})
		}

		logger := progressLogger(onProgress)

		var opts []download.Option
		var renderer *browser.Renderer
		if useBrowser {
			onProgress(download.ProgressEvent{Message: "Starting browser...", Level: download.LevelInfo})
			bopts := settings.ToBrowserOptions()
			bopts.Logger = logger
			r, err := browser.Launch(bopts)
			if err != nil {
				return InitDoneMsg{Err: err}
			}
			renderer = r
			opts = append(opts, download.WithPageSource(download.BrowserSource(r)))
		}

		manager, err := download.NewManager(&settings, onProgress, opts...)
		if err != nil {
			return InitDoneMsg{Renderer: renderer, Err: err}
		}

		if libraryMode {
			lib := suno.NewLibrary()
			session := browser.NewLibrarySession(settings.ToLibraryOptions(), logger)
			if _, err := renderer.CollectLibrary(ctx, session, lib); err != nil {
				return InitDoneMsg{Renderer: renderer, Err: err}
			}
			err = manager.InitializeFromLibrary(lib)
		} else {
			var urls []string
			urls, err = resolveURLs(input)
			if err == nil {
				err = manager.Initialize(ctx, urls)
			}
		}
		if err != nil {
			return InitDoneMsg{Renderer: renderer, Err: err}
		}
		if len(manager.Tracks()) == 0 {
			return InitDoneMsg{Renderer: renderer, Err: errors.New("no songs found")}
		}

		return InitDoneMsg{
			Songs:    manager.GetTrackNames(),
			Manager:  manager,
			Renderer: renderer,
		}
	}
}

// progressLogger returns a logger whose entries arrive as progress events,
// so browser and library messages show up in the log pane instead of
// being written over the screen. Filtering is left to the verbose toggle.
func progressLogger(onProgress func(download.ProgressEvent)) *log.Logger {
	return log.NewWithOptions(eventWriter(onProgress), log.Options{
		Formatter: log.JSONFormatter,
		Level:     log.DebugLevel,
	})
}

// eventWriter turns JSON log lines into progress events.
type eventWriter func(download.ProgressEvent)

func (w eventWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			w(download.ProgressEvent{Message: string(line), Level: download.LevelInfo})
			continue
		}
		w(logEvent(entry))
	}
	return len(p), nil
}

func logEvent(entry map[string]any) download.ProgressEvent {
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "level", "msg", "time", "prefix", "caller":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry[k])
	}

	event := download.ProgressEvent{Message: b.String(), Level: download.LevelInfo}
	switch level {
	case "debug":
		event.Level = download.LevelVerbose
	case "warn":
		event.Level = download.LevelWarning
	case "error", "fatal":
		event.Level = download.LevelError
	}
	return event
}

// startDownload starts the actual download in background.
func (m *Model) startDownload() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := manager.StartDownloads(ctx)
		received, total, files, totalFiles := manager.GetProgress()

		return DownloadDoneMsg{
			Received: received,
			Total:    total,
			Files:    files,
			TotalF:   totalFiles,
			Stats:    manager.Stats(),
			Err:      err,
		}
	}
}

// Run starts the TUI application with the given settings.
func Run(settings *config.Settings) error {
	model := NewModel(settings)
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.out.program = p
	_, err := p.Run()
	return err
}
