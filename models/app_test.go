package models

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cryptotracker/api"
	"cryptotracker/chart"
	"cryptotracker/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

var testCoins = []api.Coin{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 50000, PriceChangePercentage24h: 1.5, MarketCap: 9.5e11, TotalVolume: 3.2e10},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3000, PriceChangePercentage24h: -2.25, MarketCap: 3.6e11, TotalVolume: 1.5e10},
	{ID: "tether", Symbol: "usdt", Name: "Tether", CurrentPrice: 1, PriceChangePercentage24h: 0, MarketCap: 9e10, TotalVolume: 4e10},
}

func newTestModel(t *testing.T, baseURL string) *AppModel {
	t.Helper()
	cfg := config.Default()
	if baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	m := NewAppModel(cfg, log)
	m.Location = time.UTC
	m.Animations = true
	m.Colors = false
	m.now = func() time.Time { return time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) }
	m.readClipboard = func() (string, error) { return "", errors.New("no clipboard") }
	m.writeClipboard = func(string) error { return errors.New("no clipboard") }
	return m
}

// dashboardServer answers the list and history endpoints.
func dashboardServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/cryptos":
			fmt.Fprint(w, `{"data":[
				{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,"price_change_percentage_24h":1.5,"market_cap":950000000000,"total_volume":32000000000},
				{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"price_change_percentage_24h":-2.25,"market_cap":360000000000,"total_volume":15000000000}
			]}`)
		case "/api/crypto/bitcoin/history":
			// Monday 2024-03-04 09:05 and 10:05 UTC
			fmt.Fprint(w, `{"data":{"id":"bitcoin","prices":[[1709543100000,49000],[1709546700000,50000]]}}`)
		case "/api/crypto/ethereum/history":
			fmt.Fprint(w, `{"data":{"id":"ethereum","prices":[[1709543100000,2900]]}}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"upstream unavailable"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loaded(coins []api.Coin) cryptosLoadedMsg {
	out := make([]api.Coin, len(coins))
	copy(out, coins)
	return cryptosLoadedMsg{coins: out}
}

func TestInitialLoadShowsLoaderThenRows(t *testing.T) {
	srv := dashboardServer(t)
	m := newTestModel(t, srv.URL)

	cmd := m.loadCryptos(true)
	if !m.Grid.Loading {
		t.Fatal("grid should show the loader while the request is in flight")
	}
	m.Update(cmd())

	if m.Grid.Loading {
		t.Error("loader should be gone after the response")
	}
	if len(m.Grid.Rows) != 2 || m.Grid.Rows[0].Coin.ID != "bitcoin" {
		t.Fatalf("rows = %+v", m.Grid.Rows)
	}
	if m.Grid.Rows[0].Rank != 1 || m.Grid.Rows[1].Rank != 2 {
		t.Error("ranks should follow list position")
	}
	if m.Grid.Rows[0].Price != "$50,000.00" || m.Grid.Rows[1].Change != "-2.25%" {
		t.Errorf("formatted row = %+v", m.Grid.Rows[0])
	}
	if !m.Grid.Rows[0].Positive || m.Grid.Rows[1].Positive {
		t.Error("positive flag should follow the change sign")
	}
	if m.PriceMap["bitcoin"] != 50000 || m.PriceMap["ethereum"] != 3000 {
		t.Errorf("price map = %v", m.PriceMap)
	}
}

func TestLoadFailureWithoutDataShowsError(t *testing.T) {
	m := newTestModel(t, "")
	m.loadCryptos(true)
	m.Update(cryptosLoadedMsg{err: &api.RequestFailedError{Status: 502}})

	if m.Grid.Loading {
		t.Error("loader should be cleared on failure")
	}
	if m.Grid.Message != m.Locale.LoadError || len(m.Grid.Rows) != 0 {
		t.Errorf("grid = %+v", m.Grid)
	}
}

func TestLoadFailureKeepsExistingRows(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(loaded(testCoins))

	m.loadCryptos(false)
	m.Update(cryptosLoadedMsg{err: errors.New("connection refused")})

	if len(m.Grid.Rows) != 3 || m.Grid.Message != "" {
		t.Errorf("rows should stay after a failed refresh, grid = %+v", m.Grid)
	}
	if len(m.Cryptos) != 3 {
		t.Error("coin list should be untouched on failure")
	}
}

func TestFilterCoins(t *testing.T) {
	cases := map[string][]string{
		"":      {"bitcoin", "ethereum", "tether"},
		"   ":   {"bitcoin", "ethereum", "tether"},
		"BIT":   {"bitcoin"},
		"eth":   {"ethereum"},
		"usdt":  {"tether"},
		"e":     {"ethereum", "tether"},
		" Eth ": {"ethereum"},
		"doge":  {},
	}
	for query, want := range cases {
		got := FilterCoins(testCoins, query)
		ids := make([]string, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.ID)
		}
		if strings.Join(ids, ",") != strings.Join(want, ",") {
			t.Errorf("FilterCoins(%q) = %v, want %v", query, ids, want)
		}
	}
}

func TestSearchTypingFiltersGrid(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(loaded(testCoins))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.Search.Focused() {
		t.Fatal("/ should focus the search box")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("eth")})

	if len(m.Filtered) != 1 || m.Filtered[0].ID != "ethereum" {
		t.Fatalf("filtered = %+v", m.Filtered)
	}
	if len(m.Grid.Rows) != 1 || m.Grid.Rows[0].Rank != 1 {
		t.Errorf("rows should be ranked within the filtered list: %+v", m.Grid.Rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zz")})
	if m.Grid.Message != m.Locale.NotFound || len(m.Grid.Rows) != 0 {
		t.Errorf("expected not-found placeholder, grid = %+v", m.Grid)
	}

	// leave the box, then esc clears the query
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Search.Value() != "" || len(m.Grid.Rows) != 3 {
		t.Errorf("esc should clear the filter, query=%q rows=%d", m.Search.Value(), len(m.Grid.Rows))
	}
}

func TestRefreshKeepsActiveFilter(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(loaded(testCoins))
	m.Search.SetValue("bit")
	m.filterCryptos()

	m.Update(loaded(testCoins))
	if len(m.Grid.Rows) != 1 || m.Grid.Rows[0].Coin.ID != "bitcoin" {
		t.Errorf("refresh should re-apply the query, rows = %+v", m.Grid.Rows)
	}
}

func TestPasteIntoSearch(t *testing.T) {
	m := newTestModel(t, "")
	m.readClipboard = func() (string, error) { return " teth\n", nil }
	m.Update(loaded(testCoins))
	m.Search.Focus()

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if m.Search.Value() != "teth" {
		t.Errorf("query = %q", m.Search.Value())
	}
	if len(m.Grid.Rows) != 1 || m.Grid.Rows[0].Coin.ID != "tether" {
		t.Errorf("rows = %+v", m.Grid.Rows)
	}
}

func TestPriceFlash(t *testing.T) {
	cases := []struct {
		previous float64
		seen     bool
		current  float64
		want     Flash
	}{
		{0, false, 100, FlashNone},
		{100, true, 100, FlashNone},
		{100, true, 101, FlashUp},
		{100, true, 99.5, FlashDown},
		{0, true, 0.0001, FlashUp},
	}
	for _, c := range cases {
		if got := priceFlash(c.previous, c.seen, c.current); got != c.want {
			t.Errorf("priceFlash(%v, %v, %v) = %v, want %v", c.previous, c.seen, c.current, got, c.want)
		}
	}
}

func TestRenderHighlightsChangedPrices(t *testing.T) {
	m := newTestModel(t, "")
	if cmd := m.handleCryptosLoaded(loaded(testCoins)); cmd != nil {
		t.Error("first render has nothing to highlight")
	}
	for _, row := range m.Grid.Rows {
		if row.Flash != FlashNone {
			t.Errorf("%s flashed on first render", row.Coin.ID)
		}
	}

	next := loaded(testCoins)
	next.coins[0].CurrentPrice = 51000
	next.coins[1].CurrentPrice = 2900
	cmd := m.handleCryptosLoaded(next)
	if cmd == nil {
		t.Fatal("expected a flash expiry tick")
	}
	want := map[string]Flash{"bitcoin": FlashUp, "ethereum": FlashDown, "tether": FlashNone}
	for _, row := range m.Grid.Rows {
		if row.Flash != want[row.Coin.ID] {
			t.Errorf("%s flash = %v, want %v", row.Coin.ID, row.Flash, want[row.Coin.ID])
		}
	}
	if m.PriceMap["bitcoin"] != 51000 || m.PriceMap["ethereum"] != 2900 {
		t.Errorf("price map not updated: %v", m.PriceMap)
	}

	// a stale expiry leaves the current highlight alone
	m.Update(flashExpiredMsg{gen: m.renderGen - 1})
	if m.Grid.Rows[0].Flash != FlashUp {
		t.Error("stale expiry cleared the highlight")
	}
	m.Update(flashExpiredMsg{gen: m.renderGen})
	for _, row := range m.Grid.Rows {
		if row.Flash != FlashNone {
			t.Errorf("%s still highlighted after expiry", row.Coin.ID)
		}
	}
}

func TestNoHighlightWithoutAnimations(t *testing.T) {
	m := newTestModel(t, "")
	m.Animations = false
	m.handleCryptosLoaded(loaded(testCoins))

	next := loaded(testCoins)
	next.coins[0].CurrentPrice = 1
	if cmd := m.handleCryptosLoaded(next); cmd != nil {
		t.Error("no expiry tick expected")
	}
	if m.Grid.Rows[0].Flash != FlashNone {
		t.Error("highlight shown with animations off")
	}
	if m.PriceMap["bitcoin"] != 1 {
		t.Error("price map should still track the latest price")
	}
}

func TestFilteredOutCoinsKeepTheirLastPrice(t *testing.T) {
	m := newTestModel(t, "")
	m.handleCryptosLoaded(loaded(testCoins))
	m.Search.SetValue("bit")
	m.filterCryptos()

	next := loaded(testCoins)
	next.coins[1].CurrentPrice = 100
	m.handleCryptosLoaded(next)
	if m.PriceMap["ethereum"] != 3000 {
		t.Errorf("hidden coin's price should not be recorded, got %v", m.PriceMap["ethereum"])
	}
}

func TestRefreshSchedule(t *testing.T) {
	m := newTestModel(t, "")
	m.startAutoRefresh()
	first := m.refreshGen
	m.startAutoRefresh()
	if m.refreshGen != first+1 {
		t.Fatalf("restart should supersede the old timer")
	}

	_, cmd := m.Update(refreshTickMsg{gen: first})
	if cmd != nil {
		t.Error("tick from a superseded timer should be ignored")
	}
	if m.Grid.Loading {
		t.Error("stale tick must not trigger a load")
	}

	_, cmd = m.Update(refreshTickMsg{gen: m.refreshGen})
	if cmd == nil {
		t.Error("current tick should reload and reschedule")
	}
	if m.Grid.Loading {
		t.Error("automatic refresh should not show the loader")
	}
}

func TestManualRefreshShowsLoader(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(loaded(testCoins))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil || !m.Grid.Loading {
		t.Error("r should start a load with the loader")
	}
}

func TestCoinSelectionLoadsChart(t *testing.T) {
	srv := dashboardServer(t)
	m := newTestModel(t, srv.URL)
	m.Update(loaded(testCoins))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should start the history fetch")
	}
	if m.SelectedCoin == nil || m.SelectedCoin.ID != "bitcoin" {
		t.Fatalf("selected = %+v", m.SelectedCoin)
	}
	if !m.Modal.Visible || m.Modal.AriaHidden || m.Modal.Coin.ID != "bitcoin" {
		t.Errorf("modal = %+v", m.Modal)
	}
	if !m.ChartPanel.Loading {
		t.Error("chart panel should show its loader")
	}

	m.Update(cmd())
	if m.ChartPanel.Loading || !m.ChartPanel.Visible {
		t.Errorf("chart panel = %+v", m.ChartPanel)
	}
	if m.ChartPanel.Title != "Bitcoin (BTC)" {
		t.Errorf("title = %q", m.ChartPanel.Title)
	}
	if m.Chart == nil {
		t.Fatal("chart should be created")
	}
	if got := strings.Join(m.Chart.Labels, "|"); got != "lun, 09:05|lun, 10:05" {
		t.Errorf("labels = %q", got)
	}
	if m.Chart.Data[0] != 49000 || m.Chart.Data[1] != 50000 {
		t.Errorf("data = %v", m.Chart.Data)
	}
	if m.Chart.Updates != 0 {
		t.Error("first chart is created, not updated")
	}

	// second coin reuses the chart
	first := m.Chart
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	if m.Chart != first {
		t.Error("chart instance should be reused")
	}
	if m.Chart.Updates != 1 || m.Chart.LastTransition != chart.TransitionActive {
		t.Errorf("updates=%d transition=%q", m.Chart.Updates, m.Chart.LastTransition)
	}
	if m.ChartPanel.Title != "Ethereum (ETH)" || len(m.Chart.Data) != 1 {
		t.Errorf("title=%q data=%v", m.ChartPanel.Title, m.Chart.Data)
	}
}

func TestStaleHistoryIsDiscarded(t *testing.T) {
	m := newTestModel(t, "")
	btc, eth := testCoins[0], testCoins[1]
	m.handleCoinSelection(btc)
	staleGen := m.historyGen
	m.handleCoinSelection(eth)

	m.Update(historyLoadedMsg{gen: staleGen, coin: btc, prices: []api.PricePoint{{Time: time.Unix(0, 0), Price: 1}}})
	if m.Chart != nil || m.ChartPanel.Visible {
		t.Error("stale response should not touch the chart")
	}
	if !m.ChartPanel.Loading {
		t.Error("latest request is still pending")
	}

	m.Update(historyLoadedMsg{gen: m.historyGen, coin: eth, prices: []api.PricePoint{{Time: time.Unix(0, 0), Price: 2}}})
	if m.ChartPanel.Title != "Ethereum (ETH)" {
		t.Errorf("title = %q", m.ChartPanel.Title)
	}
}

func TestHistoryFailureOnlyChangesTitle(t *testing.T) {
	srv := dashboardServer(t)
	m := newTestModel(t, srv.URL)

	m.Update(m.handleCoinSelection(testCoins[0])())
	before := append([]float64(nil), m.Chart.Data...)

	// tether has no history route, the server answers 502
	m.Update(m.handleCoinSelection(testCoins[2])())
	if m.ChartPanel.Title != m.Locale.ChartError {
		t.Errorf("title = %q", m.ChartPanel.Title)
	}
	if len(m.Chart.Data) != len(before) || m.Chart.Data[0] != before[0] {
		t.Errorf("chart data changed on failure: %v", m.Chart.Data)
	}
	if m.ChartPanel.Loading {
		t.Error("loader should be cleared on failure")
	}
	if !m.Modal.Visible || m.Modal.Coin.ID != "tether" {
		t.Error("modal should still show the selected coin")
	}
}

func TestModalKeys(t *testing.T) {
	m := newTestModel(t, "")
	var copied string
	m.writeClipboard = func(s string) error { copied = s; return nil }
	m.showModal(testCoins[0])

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if copied != "bitcoin $50,000.00" {
		t.Errorf("copied %q", copied)
	}
	if m.Notice != m.Locale.Copied {
		t.Errorf("notice = %q", m.Notice)
	}

	// keys meant for the grid are swallowed while the modal is open
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Grid.Loading {
		t.Error("refresh key reached the grid through the modal")
	}

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune("x")},
	} {
		m.showModal(testCoins[0])
		m.Update(k)
		if m.Modal.Visible || !m.Modal.AriaHidden {
			t.Errorf("%s should close the modal", k)
		}
	}
}

func TestMouseOutsideModalCloses(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.showModal(testCoins[0])

	m.Update(tea.MouseMsg{X: 60, Y: 20, Type: tea.MouseLeft})
	if !m.Modal.Visible {
		t.Fatal("click inside the card should keep it open")
	}
	m.Update(tea.MouseMsg{X: 1, Y: 1, Type: tea.MouseLeft})
	if m.Modal.Visible {
		t.Error("click on the backdrop should close the modal")
	}
}

func TestMouseClickSelectsRow(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(loaded(testCoins))

	_, cmd := m.Update(tea.MouseMsg{X: 10, Y: m.gridTop() + 1, Type: tea.MouseLeft})
	if cmd == nil {
		t.Fatal("row click should start the history fetch")
	}
	if m.Cursor != 1 || m.SelectedCoin == nil || m.SelectedCoin.ID != "ethereum" {
		t.Errorf("cursor=%d selected=%+v", m.Cursor, m.SelectedCoin)
	}

	m.hideModal()
	if _, cmd := m.Update(tea.MouseMsg{X: 10, Y: 0, Type: tea.MouseLeft}); cmd != nil {
		t.Error("header click should not select anything")
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(loaded(testCoins))
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("cursor = %d", m.Cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if m.Cursor != 2 {
		t.Errorf("cursor = %d", m.Cursor)
	}
	m.Search.SetValue("bit")
	m.filterCryptos()
	if m.Cursor != 0 {
		t.Errorf("cursor should clamp to the filtered rows, got %d", m.Cursor)
	}
}

func TestViewShowsGridAndModal(t *testing.T) {
	m := newTestModel(t, "")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(loaded(testCoins))

	view := m.View()
	for _, want := range []string{"Bitcoin", "BTC", "$50,000.00", "+1.50%", "950.00B", "-2.25%"} {
		if !strings.Contains(view, want) {
			t.Errorf("grid view missing %q", want)
		}
	}

	m.showModal(testCoins[1])
	view = m.View()
	for _, want := range []string{"Ethereum", "ETH", "$3,000.00", "360.00B", "15,000,000,000", "-2.25%"} {
		if !strings.Contains(view, want) {
			t.Errorf("modal view missing %q", want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	srv := dashboardServer(t)
	m := newTestModel(t, srv.URL)

	out := m.Snapshot(t.Context())
	if !strings.Contains(out, "Bitcoin") || !strings.Contains(out, "Ethereum") {
		t.Errorf("snapshot = %q", out)
	}

	bad := newTestModel(t, srv.URL+"/nowhere")
	if out := bad.Snapshot(t.Context()); !strings.Contains(out, bad.Locale.LoadError) {
		t.Errorf("snapshot on failure = %q", out)
	}
}
