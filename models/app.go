package models

import (
	"context"
	"time"

	"cryptotracker/api"
	"cryptotracker/chart"
	"cryptotracker/config"
	"cryptotracker/ui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

type AppModel struct {
	Width  int
	Height int

	Client          *api.Client
	Locale          ui.Locale
	Log             *logrus.Logger
	Location        *time.Location
	RefreshInterval time.Duration
	Animations      bool // price glow on refresh
	Colors          bool // chart ANSI colors

	Cryptos      []api.Coin
	Filtered     []api.Coin
	PriceMap     map[string]float64 // last rendered price per coin id
	SelectedCoin *api.Coin
	Chart        *chart.LineChart
	LastUpdated  time.Time

	Grid       Grid
	Cursor     int
	Offset     int
	Search     textinput.Model
	Modal      Modal
	ChartPanel ChartPanel
	Spinner    spinner.Model
	Notice     string

	refreshGen int
	historyGen int
	renderGen  int

	now            func() time.Time
	readClipboard  func() (string, error)
	writeClipboard func(string) error
}

// Grid is the coin list area. Loading and Message replace the rows while set.
type Grid struct {
	Loading bool
	Message string
	Rows    []Row
}

type Modal struct {
	Visible    bool
	AriaHidden bool
	Coin       api.Coin
}

type ChartPanel struct {
	Visible bool
	Title   string
	Loading bool
}

// NewAppModel builds the dashboard from cfg. Nothing is fetched until Init.
func NewAppModel(cfg *config.Config, log *logrus.Logger) *AppModel {
	if log == nil {
		log = logrus.New()
	}
	locale := ui.LocaleFor(cfg.Locale)

	search := textinput.New()
	search.Placeholder = locale.SearchPlaceholder
	search.Prompt = "🔍 "
	search.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.LoadingStyle

	colors := lipgloss.ColorProfile() != termenv.Ascii

	return &AppModel{
		Client:          api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout),
		Locale:          locale,
		Log:             log,
		Location:        time.Local,
		RefreshInterval: cfg.RefreshInterval,
		Animations:      cfg.Animations && colors,
		Colors:          colors,
		PriceMap:        make(map[string]float64),
		Modal:           Modal{AriaHidden: true},
		Search:          search,
		Spinner:         s,
		now:             time.Now,
		readClipboard:   clipboard.ReadAll,
		writeClipboard:  clipboard.WriteAll,
	}
}

// App startup: first load with the grid loader, then the refresh timer.
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadCryptos(true),
		m.startAutoRefresh(),
		m.Spinner.Tick,
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Search.Width = msg.Width - 10
		m.ensureVisible()
		return m, nil

	case cryptosLoadedMsg:
		return m, m.handleCryptosLoaded(msg)

	case historyLoadedMsg:
		m.handleHistoryLoaded(msg)
		return m, nil

	case refreshTickMsg:
		if msg.gen != m.refreshGen {
			return m, nil
		}
		return m, tea.Batch(m.loadCryptos(false), m.scheduleRefresh())

	case flashExpiredMsg:
		if msg.gen == m.renderGen {
			for i := range m.Grid.Rows {
				m.Grid.Rows[i].Flash = FlashNone
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.Search.Focused() {
		var cmd tea.Cmd
		m.Search, cmd = m.Search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Message types for Bubble Tea
type cryptosLoadedMsg struct {
	coins []api.Coin
	err   error
}

type historyLoadedMsg struct {
	gen    int
	coin   api.Coin
	prices []api.PricePoint
	err    error
}

type refreshTickMsg struct{ gen int }

type flashExpiredMsg struct{ gen int }

// loadCryptos fetches the coin list. With showLoader the grid shows the
// spinner until the response arrives.
func (m *AppModel) loadCryptos(showLoader bool) tea.Cmd {
	if showLoader {
		m.Grid.Loading = true
	}
	client := m.Client
	return func() tea.Msg {
		coins, err := client.ListCryptos(context.Background())
		return cryptosLoadedMsg{coins: coins, err: err}
	}
}

func (m *AppModel) handleCryptosLoaded(msg cryptosLoadedMsg) tea.Cmd {
	m.Grid.Loading = false
	if msg.err != nil {
		m.Log.WithError(msg.err).Warn("Error loading cryptocurrencies")
		if len(m.Cryptos) == 0 {
			m.setGridMessage(m.Locale.LoadError)
		}
		return nil
	}

	m.Log.WithField("count", len(msg.coins)).Debug("Cryptocurrencies loaded")
	m.Cryptos = msg.coins
	m.LastUpdated = m.now()
	return m.filterCryptos()
}

// startAutoRefresh replaces any running refresh timer with a new one.
func (m *AppModel) startAutoRefresh() tea.Cmd {
	m.refreshGen++
	return m.scheduleRefresh()
}

func (m *AppModel) scheduleRefresh() tea.Cmd {
	gen := m.refreshGen
	return tea.Tick(m.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}
