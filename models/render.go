package models

import (
	"strings"
	"time"

	"cryptotracker/api"
	"cryptotracker/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// How long a changed price stays highlighted.
const flashDuration = 600 * time.Millisecond

// Flash is the highlight a row's price gets after a refresh.
type Flash int

const (
	FlashNone Flash = iota
	FlashUp
	FlashDown
)

// Row is one rendered grid entry.
type Row struct {
	Rank      int
	Coin      api.Coin
	Price     string
	Change    string
	MarketCap string
	Volume    string
	Positive  bool
	Flash     Flash
}

// FilterCoins keeps coins whose name or symbol contains query, ignoring case.
// A blank query keeps everything. Order is preserved.
func FilterCoins(coins []api.Coin, query string) []api.Coin {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]api.Coin, 0, len(coins))
	for _, coin := range coins {
		if q == "" ||
			strings.Contains(strings.ToLower(coin.Name), q) ||
			strings.Contains(strings.ToLower(coin.Symbol), q) {
			out = append(out, coin)
		}
	}
	return out
}

// priceFlash compares a coin's price with the one rendered last time.
func priceFlash(previous float64, seen bool, current float64) Flash {
	switch {
	case !seen || current == previous:
		return FlashNone
	case current > previous:
		return FlashUp
	default:
		return FlashDown
	}
}

func (m *AppModel) filterCryptos() tea.Cmd {
	m.Filtered = FilterCoins(m.Cryptos, m.Search.Value())
	return m.renderCryptoList()
}

// renderCryptoList rebuilds the grid from Filtered and records each price
// in PriceMap. It returns the flash expiry tick when any row is highlighted.
func (m *AppModel) renderCryptoList() tea.Cmd {
	m.Grid.Loading = false
	if len(m.Filtered) == 0 {
		m.setGridMessage(m.Locale.NotFound)
		m.Cursor, m.Offset = 0, 0
		return nil
	}

	m.renderGen++
	rows := make([]Row, 0, len(m.Filtered))
	flashing := false
	for i, coin := range m.Filtered {
		row := m.buildRow(coin, i)
		if row.Flash != FlashNone {
			flashing = true
		}
		rows = append(rows, row)
	}
	m.Grid = Grid{Rows: rows}
	m.ensureVisible()

	if !flashing {
		return nil
	}
	gen := m.renderGen
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{gen: gen}
	})
}

func (m *AppModel) buildRow(coin api.Coin, index int) Row {
	previous, seen := m.PriceMap[coin.ID]
	row := Row{
		Rank:      index + 1,
		Coin:      coin,
		Price:     ui.Price(coin.CurrentPrice),
		Change:    ui.Percent(coin.PriceChangePercentage24h),
		MarketCap: ui.MarketCap(coin.MarketCap),
		Volume:    ui.Volume(coin.TotalVolume),
		Positive:  coin.PriceChangePercentage24h >= 0,
	}
	if m.Animations {
		row.Flash = priceFlash(previous, seen, coin.CurrentPrice)
	}
	m.PriceMap[coin.ID] = coin.CurrentPrice
	return row
}

func (m *AppModel) setGridMessage(message string) {
	m.Grid = Grid{Message: message}
}

// pageSize is the number of rows that fit on screen, or all of them when
// the terminal size is unknown.
func (m *AppModel) pageSize() int {
	if m.Height <= 0 {
		return len(m.Grid.Rows)
	}
	used := m.gridTop() + 2 // footer
	if m.ChartPanel.Visible {
		used += strings.Count(m.chartPanelView(), "\n") + 1
	}
	if n := m.Height - used; n > 1 {
		return n
	}
	return 1
}

func (m *AppModel) moveCursor(delta int) {
	m.Cursor += delta
	m.ensureVisible()
}

// ensureVisible clamps the cursor to the rows and scrolls it into view.
func (m *AppModel) ensureVisible() {
	n := len(m.Grid.Rows)
	if m.Cursor > n-1 {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	page := m.pageSize()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if page > 0 && m.Cursor >= m.Offset+page {
		m.Offset = m.Cursor - page + 1
	}
	if m.Offset > n-page {
		m.Offset = n - page
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m *AppModel) currentRow() (Row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Grid.Rows) {
		return Row{}, false
	}
	return m.Grid.Rows[m.Cursor], true
}
