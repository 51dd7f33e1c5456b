package tui

import (
	"context"
	"fmt"

	"audiodex/config"
	"audiodex/services"
	"audiodex/types"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// state is the presenter's position in its lifecycle.
type state int

const (
	stateAwaitingPermission state = iota
	stateScanning
	stateEmpty
	statePopulated
	stateDenied
)

// User-visible status strings.
const (
	emptyMessage  = "No audio files found. Ensure you have MP3s in your music folder."
	deniedMessage = "Media library access was denied."
)

// Model is the Bubble Tea model for the library browser. All state
// transitions happen on the program's single update loop; the scan itself
// runs as a command off that loop and re-enters as a scanDoneMsg.
type Model struct {
	state   state
	scanner *services.Scanner
	gate    services.Gate
	library string
	cfg     UIConfig

	// Entries from the most recent scan, replaced wholesale. The list view
	// renders them in the order the index produced them.
	entries []types.AudioEntry
	list    list.Model
	spinner spinner.Model

	// generation tags each started scan; a result carrying a stale
	// generation is discarded (last-write-wins).
	generation int
	cancelScan context.CancelFunc

	// ctx spans the model's lifetime; quitting cancels it, so an in-flight
	// scan can never deliver into a torn-down presenter.
	ctx    context.Context
	cancel context.CancelFunc

	prompted   bool // the gate denied once and the interactive prompt took over
	rechecking bool // the prompt was accepted and the gate is being asked again
	statusLine string
	width      int
	height     int
}

// permissionMsg carries the gate's decision back onto the update loop.
type permissionMsg types.Decision

// scanDoneMsg carries a finished scan back onto the update loop.
type scanDoneMsg struct {
	generation int
	entries    []types.AudioEntry
	err        error
}

// entryItem adapts an AudioEntry to the bubbles list.
type entryItem struct {
	entry types.AudioEntry
}

func (i entryItem) Title() string { return i.entry.Title }

func (i entryItem) Description() string {
	return fmt.Sprintf("%s · %s", i.entry.Artist, formatDuration(i.entry.Duration))
}

func (i entryItem) FilterValue() string { return i.entry.Title + " " + i.entry.Artist }

// NewModel creates the presenter in the AwaitingPermission state.
func NewModel(scanner *services.Scanner, gate services.Gate, library string, cfg UIConfig) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Audio Library"
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return Model{
		state:   stateAwaitingPermission,
		scanner: scanner,
		gate:    gate,
		library: library,
		cfg:     cfg,
		spinner: sp,
		list:    l,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run builds the presenter over the configured library and runs it.
func Run() error {
	cfg := loadConfig()
	library := config.GetLibraryLocation()

	index := services.NewFSIndex(library)
	scanner := services.NewScanner(index, config.GetMinDurationMS())
	gate := services.FSGate{Root: library}

	m := NewModel(scanner, gate, library, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.requestPermission())
}

// requestPermission waits for the gate's single decision in the background.
func (m Model) requestPermission() tea.Cmd {
	ch := m.gate.Request(m.ctx)
	return func() tea.Msg {
		return permissionMsg(<-ch)
	}
}

// startScan begins a new scan generation and moves to Scanning. Any previous
// in-flight scan is cancelled; even if it still completes, its stale
// generation keeps its result from being applied.
func (m *Model) startScan() tea.Cmd {
	if m.cancelScan != nil {
		m.cancelScan()
	}

	m.generation++
	gen := m.generation

	scanCtx, cancel := context.WithCancel(m.ctx)
	m.cancelScan = cancel

	m.state = stateScanning
	m.statusLine = ""

	scanner := m.scanner
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		entries, err := scanner.Scan(scanCtx)
		return scanDoneMsg{generation: gen, entries: entries, err: err}
	})
}

// applyScan applies a finished scan's outcome. Scanner errors collapse into
// the empty outcome here; the status text is the only signal.
func (m *Model) applyScan(msg scanDoneMsg) {
	if msg.err != nil || len(msg.entries) == 0 {
		m.entries = nil
		m.list.SetItems(nil)
		m.state = stateEmpty
		return
	}

	m.entries = msg.entries
	items := make([]list.Item, len(msg.entries))
	for i, entry := range msg.entries {
		items[i] = entryItem{entry: entry}
	}
	m.list.SetItems(items)
	m.state = statePopulated
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "y":
			if m.state == stateAwaitingPermission && m.prompted {
				// Interactive grant: ask the gate again
				m.rechecking = true
				return m, tea.Batch(m.spinner.Tick, m.requestPermission())
			}

		case "n", "esc":
			if m.state == stateAwaitingPermission && m.prompted {
				m.state = stateDenied
				return m, nil
			}

		case "r":
			if m.state == statePopulated || m.state == stateEmpty {
				return m, m.startScan()
			}

		case "enter":
			if m.state == statePopulated {
				if item, ok := m.list.SelectedItem().(entryItem); ok {
					// Placeholder for a future playback engine
					m.statusLine = fmt.Sprintf("Selected %q by %s — playback not implemented",
						item.entry.Title, item.entry.Artist)
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(min(msg.Width-4, m.cfg.MaxWidth), msg.Height-6)

	case permissionMsg:
		if m.state != stateAwaitingPermission {
			return m, nil
		}
		m.rechecking = false
		if types.Decision(msg) == types.Granted {
			return m, m.startScan()
		}
		if m.prompted {
			// The interactive request was refused as well: terminal denial
			m.state = stateDenied
			return m, nil
		}
		m.prompted = true
		return m, nil

	case scanDoneMsg:
		// Discard results from superseded scans: last write wins
		if msg.generation != m.generation {
			return m, nil
		}
		m.applyScan(msg)
		return m, nil

	case spinner.TickMsg:
		if m.state == stateScanning || m.state == stateAwaitingPermission {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.state == statePopulated {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// formatDuration renders milliseconds as mm:ss.
func formatDuration(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
