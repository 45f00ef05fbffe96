package models

import (
	"context"
	"fmt"
	"strings"

	"cryptotracker/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Grid column widths
const (
	colRank   = 4
	colName   = 26
	colPrice  = 14
	colChange = 9
	colCap    = 10
	colVolume = 18
)

func (m *AppModel) View() string {
	if m.Modal.Visible {
		return m.modalView()
	}

	sections := []string{m.headerView(), m.searchView(), m.gridView()}
	if m.ChartPanel.Visible {
		sections = append(sections, m.chartPanelView())
	}
	sections = append(sections, m.footerView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *AppModel) headerView() string {
	title := ui.TitleStyle.Render("₿ " + m.Locale.Title)
	if m.LastUpdated.IsZero() {
		return title
	}
	status := fmt.Sprintf("%d %s • %s %s",
		len(m.Cryptos), m.Locale.Coins,
		m.Locale.Updated, m.LastUpdated.In(m.Location).Format("15:04:05"))
	return title + ui.InfoStyle.Render(status)
}

func (m *AppModel) searchView() string {
	if m.Search.Focused() {
		return ui.SearchFocusedStyle.Render(m.Search.View())
	}
	return ui.SearchStyle.Render(m.Search.View())
}

func (m *AppModel) searchTop() int {
	return lipgloss.Height(m.headerView())
}

// gridTop is the screen line of the first coin row.
func (m *AppModel) gridTop() int {
	return m.searchTop() + lipgloss.Height(m.searchView()) + lipgloss.Height(m.tableHeaderView())
}

func (m *AppModel) tableHeaderView() string {
	l := m.Locale
	line := strings.Join([]string{
		" " + padRight(l.ColRank, colRank),
		padRight(l.ColName, colName),
		padLeft(l.ColPrice, colPrice),
		padLeft(l.ColChange, colChange),
		padLeft(l.ColMarketCap, colCap),
		padLeft(l.ColVolume, colVolume),
	}, " ")
	return ui.TableHeaderStyle.Render(line)
}

func (m *AppModel) gridView() string {
	var b strings.Builder
	b.WriteString(m.tableHeaderView())

	switch {
	case m.Grid.Loading:
		b.WriteString("\n" + m.Spinner.View() + " " + ui.LoadingStyle.Render(m.Locale.Loading))
	case m.Grid.Message != "":
		b.WriteString("\n" + ui.InfoStyle.Render(m.Grid.Message))
	default:
		end := m.Offset + m.pageSize()
		if end > len(m.Grid.Rows) {
			end = len(m.Grid.Rows)
		}
		for i := m.Offset; i < end; i++ {
			b.WriteString("\n" + m.rowView(m.Grid.Rows[i], i == m.Cursor))
		}
	}
	return b.String()
}

func (m *AppModel) rowView(row Row, selected bool) string {
	marker := " "
	if selected {
		marker = ui.PositiveStyle.Render("›")
	}

	symbol := strings.ToUpper(row.Coin.Symbol)
	nameWidth := colName - runewidth.StringWidth(symbol) - 1
	name := runewidth.FillRight(runewidth.Truncate(row.Coin.Name, nameWidth, "…"), nameWidth)

	price := padLeft(row.Price, colPrice)
	switch row.Flash {
	case FlashUp:
		price = ui.GlowUpStyle.Render(price)
	case FlashDown:
		price = ui.GlowDownStyle.Render(price)
	}

	nameStyle := ui.TableRowStyle
	if selected {
		nameStyle = ui.SelectedRowStyle
	}

	return strings.Join([]string{
		marker + ui.SymbolStyle.Render(padRight(fmt.Sprint(row.Rank), colRank)),
		nameStyle.Render(name) + " " + ui.SymbolStyle.Render(symbol),
		price,
		ui.ChangeStyle(row.Coin.PriceChangePercentage24h).Render(padLeft(row.Change, colChange)),
		padLeft(row.MarketCap, colCap),
		padLeft(row.Volume, colVolume),
	}, " ")
}

func (m *AppModel) chartWidth() int {
	if m.Width <= 0 {
		return 80
	}
	if w := m.Width - 6; w > 30 {
		return w
	}
	return 30
}

func (m *AppModel) chartPanelView() string {
	title := ui.ChartTitleStyle.Render(m.ChartPanel.Title)
	if m.ChartPanel.Loading {
		title += " " + m.Spinner.View()
	}

	var body string
	if m.Chart == nil || len(m.Chart.Data) == 0 {
		body = ui.InfoStyle.Render(m.Locale.ChartEmpty)
	} else {
		body = m.Chart.Render(m.chartWidth()) + "\n" + ui.StatLabelStyle.Render(m.Chart.Tooltip())
	}
	return ui.ChartPanelStyle.Render(title + "\n" + body)
}

func (m *AppModel) footerView() string {
	footer := ui.InfoStyle.Render(m.Locale.Help)
	if m.Notice != "" {
		footer += "  " + ui.PositiveStyle.Render(m.Notice)
	}
	return "\n" + footer
}

// modalBox is the detail card for the open coin, unplaced.
func (m *AppModel) modalBox() string {
	coin := m.Modal.Coin
	l := m.Locale

	heading := ui.ChartTitleStyle.Render(coin.Name) + "  " + ui.SymbolStyle.Render(strings.ToUpper(coin.Symbol))
	price := ui.StatValueStyle.Render(ui.Price(coin.CurrentPrice))

	stat := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			ui.StatLabelStyle.Render(label),
			value,
		)
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat(l.MarketCap, ui.StatValueStyle.Render(ui.MarketCap(coin.MarketCap))), "    ",
		stat(l.Volume24h, ui.StatValueStyle.Render(ui.Volume(coin.TotalVolume))), "    ",
		stat(l.Change24h, ui.StyledPercent(coin.PriceChangePercentage24h)),
	)

	lines := []string{heading, price}
	if coin.Image != "" {
		lines = append(lines, ui.InfoStyle.Render(coin.Image))
	}
	lines = append(lines, "", stats, "", ui.InfoStyle.Render(l.ModalHelp))
	if m.Notice != "" {
		lines = append(lines, ui.PositiveStyle.Render(m.Notice))
	}
	return ui.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *AppModel) modalView() string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.modalBox())
}

// Snapshot loads the coin list once and renders the grid, for output that
// is not a terminal.
func (m *AppModel) Snapshot(ctx context.Context) string {
	coins, err := m.Client.ListCryptos(ctx)
	m.handleCryptosLoaded(cryptosLoadedMsg{coins: coins, err: err})
	return m.gridView()
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
