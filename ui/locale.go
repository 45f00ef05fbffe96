package ui

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locale holds the user-facing strings of the dashboard.
type Locale struct {
	Tag string

	Title             string
	SearchPlaceholder string
	Loading           string
	NotFound          string
	LoadError         string
	ChartError        string
	ChartEmpty        string

	ColRank      string
	ColName      string
	ColPrice     string
	ColChange    string
	ColMarketCap string
	ColVolume    string

	MarketCap string
	Volume24h string
	Change24h string

	Updated   string
	Coins     string
	Copied    string
	ModalHelp string
	Weekdays  [7]string // indexed by time.Weekday
	Help      string
}

var spanish = Locale{
	Tag:               "es",
	Title:             "CryptoTracker",
	SearchPlaceholder: "Buscar por nombre o símbolo",
	Loading:           "Cargando...",
	NotFound:          "No se encontraron criptomonedas.",
	LoadError:         "No pudimos cargar los datos. Intenta nuevamente.",
	ChartError:        "No pudimos cargar la gráfica.",
	ChartEmpty:        "Sin datos históricos.",
	ColRank:           "#",
	ColName:           "Nombre",
	ColPrice:          "Precio",
	ColChange:         "24h",
	ColMarketCap:      "Market Cap",
	ColVolume:         "Volumen",
	MarketCap:         "Market Cap",
	Volume24h:         "Volumen 24h",
	Change24h:         "Cambio 24h",
	Updated:           "Actualizado",
	Coins:             "monedas",
	Copied:            "Copiado al portapapeles",
	ModalHelp:         "esc cerrar • y copiar",
	Weekdays:          [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
	Help:              "/ buscar • ↑↓ mover • enter detalle • r actualizar • ←→ gráfica • c cerrar gráfica • q salir",
}

var english = Locale{
	Tag:               "en",
	Title:             "CryptoTracker",
	SearchPlaceholder: "Search by name or symbol",
	Loading:           "Loading...",
	NotFound:          "No cryptocurrencies found.",
	LoadError:         "We couldn't load the data. Please try again.",
	ChartError:        "We couldn't load the chart.",
	ChartEmpty:        "No price history.",
	ColRank:           "#",
	ColName:           "Name",
	ColPrice:          "Price",
	ColChange:         "24h",
	ColMarketCap:      "Market Cap",
	ColVolume:         "Volume",
	MarketCap:         "Market Cap",
	Volume24h:         "24h Volume",
	Change24h:         "24h Change",
	Updated:           "Updated",
	Coins:             "coins",
	Copied:            "Copied to clipboard",
	ModalHelp:         "esc close • y copy",
	Weekdays:          [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	Help:              "/ search • ↑↓ move • enter details • r refresh • ←→ chart • c close chart • q quit",
}

// Spanish is first so unmatched tags fall back to it.
var (
	supported = []Locale{spanish, english}
	matcher   = language.NewMatcher([]language.Tag{language.Spanish, language.English})
)

// LocaleFor picks the closest supported locale for a BCP 47 tag such as "es-ES" or "en_US".
func LocaleFor(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return supported[0]
	}
	_, idx, _ := matcher.Match(t)
	return supported[idx]
}

// ShortStamp renders a chart label: abbreviated weekday plus 24h hour and minute.
func (l Locale) ShortStamp(t time.Time) string {
	return fmt.Sprintf("%s, %02d:%02d", l.Weekdays[t.Weekday()], t.Hour(), t.Minute())
}
