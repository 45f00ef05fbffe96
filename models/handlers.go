package models

import (
	"fmt"
	"strings"

	"cryptotracker/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	m.Notice = ""

	if m.Modal.Visible {
		return m.handleModalKeys(msg)
	}
	if m.Search.Focused() {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		return m, m.Search.Focus()

	case "esc":
		// Clear an active filter
		if m.Search.Value() != "" {
			m.Search.SetValue("")
			return m, m.filterCryptos()
		}

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.pageSize())
	case "pgdown":
		m.moveCursor(m.pageSize())
	case "home", "g":
		m.moveCursor(-len(m.Grid.Rows))
	case "end", "G":
		m.moveCursor(len(m.Grid.Rows))

	case "enter", " ":
		if row, ok := m.currentRow(); ok {
			return m, m.handleCoinSelection(row.Coin)
		}

	case "r", "f5":
		return m, m.loadCryptos(true)

	case "c":
		m.closeChart()

	case "left", "h":
		if m.Chart != nil && m.ChartPanel.Visible {
			m.Chart.MoveCursor(-1)
		}
	case "right", "l":
		if m.Chart != nil && m.ChartPanel.Visible {
			m.Chart.MoveCursor(1)
		}
	}
	return m, nil
}

// handleSearchKeys feeds keys to the focused search box and re-filters on
// every change.
func (m *AppModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.Search.Blur()
		return m, nil

	case "up", "down":
		m.Search.Blur()
		return m.handleKeyPress(msg)

	case "ctrl+v":
		text, err := m.readClipboard()
		if err != nil {
			m.Log.WithError(err).Debug("Clipboard read failed")
			return m, nil
		}
		text = strings.ReplaceAll(text, "\n", "")
		text = strings.ReplaceAll(text, "\r", "")
		text = strings.TrimSpace(text)
		if text == "" {
			return m, nil
		}
		m.Search.SetValue(m.Search.Value() + text)
		m.Search.CursorEnd()
		return m, m.filterCryptos()
	}

	before := m.Search.Value()
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	if m.Search.Value() != before {
		return m, tea.Batch(cmd, m.filterCryptos())
	}
	return m, cmd
}

func (m *AppModel) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "x", "q", "enter":
		m.hideModal()
	case "y":
		m.copySelection()
	}
	return m, nil
}

// copySelection puts "<id> <price>" of the open coin on the clipboard.
func (m *AppModel) copySelection() {
	coin := m.Modal.Coin
	text := fmt.Sprintf("%s %s", coin.ID, ui.Price(coin.CurrentPrice))
	if err := m.writeClipboard(text); err != nil {
		m.Log.WithError(err).Debug("Clipboard write failed")
		return
	}
	m.Notice = m.Locale.Copied
}

func (m *AppModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Type != tea.MouseLeft {
		return nil
	}

	if m.Modal.Visible {
		if !m.insideModal(msg.X, msg.Y) {
			m.hideModal()
		}
		return nil
	}

	if msg.Y >= m.searchTop() && msg.Y < m.gridTop()-lipgloss.Height(m.tableHeaderView()) {
		return m.Search.Focus()
	}
	if m.Search.Focused() {
		m.Search.Blur()
	}

	if idx, ok := m.rowAt(msg.Y); ok {
		m.Cursor = idx
		return m.handleCoinSelection(m.Grid.Rows[idx].Coin)
	}
	return nil
}

// insideModal reports whether a cell falls on the centered modal box.
func (m *AppModel) insideModal(x, y int) bool {
	box := m.modalBox()
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	x0 := (m.Width - w) / 2
	y0 := (m.Height - h) / 2
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	return x >= x0 && x < x0+w && y >= y0 && y < y0+h
}

// rowAt maps a screen line to a row index.
func (m *AppModel) rowAt(y int) (int, bool) {
	if m.Grid.Loading || m.Grid.Message != "" {
		return 0, false
	}
	i := y - m.gridTop()
	if i < 0 || i >= m.pageSize() {
		return 0, false
	}
	idx := m.Offset + i
	if idx >= len(m.Grid.Rows) {
		return 0, false
	}
	return idx, true
}
