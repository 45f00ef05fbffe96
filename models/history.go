package models

import (
	"context"
	"fmt"
	"strings"

	"cryptotracker/api"
	"cryptotracker/chart"
	"cryptotracker/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// handleCoinSelection opens the detail modal and starts the history fetch.
func (m *AppModel) handleCoinSelection(coin api.Coin) tea.Cmd {
	selected := coin
	m.SelectedCoin = &selected
	m.showModal(coin)
	return m.loadCoinHistory(coin)
}

func (m *AppModel) showModal(coin api.Coin) {
	m.Modal = Modal{Visible: true, AriaHidden: false, Coin: coin}
}

func (m *AppModel) hideModal() {
	m.Modal.Visible = false
	m.Modal.AriaHidden = true
}

// loadCoinHistory fetches the price series for coin. Only the response to
// the latest request is applied.
func (m *AppModel) loadCoinHistory(coin api.Coin) tea.Cmd {
	m.historyGen++
	gen := m.historyGen
	m.ChartPanel.Loading = true
	client := m.Client
	return func() tea.Msg {
		prices, err := client.CoinHistory(context.Background(), coin.ID)
		return historyLoadedMsg{gen: gen, coin: coin, prices: prices, err: err}
	}
}

func (m *AppModel) handleHistoryLoaded(msg historyLoadedMsg) {
	if msg.gen != m.historyGen {
		m.Log.WithField("coin", msg.coin.ID).Debug("Discarding stale history response")
		return
	}
	m.ChartPanel.Loading = false
	if msg.err != nil {
		m.Log.WithError(msg.err).WithField("coin", msg.coin.ID).Warn("Error loading coin history")
		m.ChartPanel.Title = m.Locale.ChartError
		return
	}
	m.updateChart(msg.coin, msg.prices)
}

// updateChart shows the chart panel for coin. The chart is created on first
// use and rebound to the new series afterwards.
func (m *AppModel) updateChart(coin api.Coin, prices []api.PricePoint) {
	m.ChartPanel.Visible = true
	m.ChartPanel.Title = fmt.Sprintf("%s (%s)", coin.Name, strings.ToUpper(coin.Symbol))

	labels := make([]string, len(prices))
	data := make([]float64, len(prices))
	for i, p := range prices {
		labels[i] = m.Locale.ShortStamp(p.Time.In(m.Location))
		data[i] = p.Price
	}

	if m.Chart != nil {
		m.Chart.SetData(labels, data)
		m.Chart.Update(chart.TransitionActive)
		return
	}
	opts := chart.DefaultOptions(ui.Price)
	opts.Colors = m.Colors
	m.Chart = chart.New(labels, data, opts)
}

func (m *AppModel) closeChart() {
	m.ChartPanel.Visible = false
	m.ensureVisible()
}
