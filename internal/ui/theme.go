package ui

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines UI color tokens used across widgets and text tags.
type Theme struct {
	// Widget colors
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color
	Accent      tcell.Color
	Success     tcell.Color
	Warning     tcell.Color
	Error       tcell.Color

	// Table colors
	TableHeader   tcell.Color
	TableHeaderBg tcell.Color
	TableRow      tcell.Color
	TableRowMuted tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary string
	TagMuted       string
	TagAccent      string
	TagSuccess     string
	TagWarning     string
	TagError       string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),
		Accent:      hex("#2dd4bf"),
		Success:     hex("#22c55e"),
		Warning:     hex("#f59e0b"),
		Error:       hex("#ef4444"),

		TableHeader:   hex("#eab308"),
		TableHeaderBg: hex("#1a2332"),
		TableRow:      hex("#e6edf3"),
		TableRowMuted: hex("#94a3b8"),

		TagTextPrimary: "#e6edf3",
		TagMuted:       "#8a939f",
		TagAccent:      "#2dd4bf",
		TagSuccess:     "#22c55e",
		TagWarning:     "#f59e0b",
		TagError:       "#ef4444",
	}
}

func themeLight() Theme {
	return Theme{
		Bg:          hex("#f6f8fa"),
		Surface:     hex("#ffffff"),
		Border:      hex("#d0d7de"),
		FocusBorder: hex("#1f6feb"),
		SelectionBg: hex("#e2e8f0"),
		SelectionFg: hex("#111827"),
		TextPrimary: hex("#111827"),
		TextMuted:   hex("#6b7280"),
		Accent:      hex("#2563eb"),
		Success:     hex("#15803d"),
		Warning:     hex("#b45309"),
		Error:       hex("#b91c1c"),

		TableHeader:   hex("#1f2937"),
		TableHeaderBg: hex("#e5e7eb"),
		TableRow:      hex("#111827"),
		TableRowMuted: hex("#6b7280"),

		TagTextPrimary: "#111827",
		TagMuted:       "#6b7280",
		TagAccent:      "#2563eb",
		TagSuccess:     "#15803d",
		TagWarning:     "#b45309",
		TagError:       "#b91c1c",
	}
}

// themeHighContrast keeps to the basic palette so it renders on 16-color terminals.
func themeHighContrast() Theme {
	return Theme{
		Bg:          tcell.ColorBlack,
		Surface:     tcell.ColorBlack,
		Border:      tcell.ColorWhite,
		FocusBorder: tcell.ColorYellow,
		SelectionBg: tcell.ColorWhite,
		SelectionFg: tcell.ColorBlack,
		TextPrimary: tcell.ColorWhite,
		TextMuted:   tcell.ColorSilver,
		Accent:      tcell.ColorAqua,
		Success:     tcell.ColorLime,
		Warning:     tcell.ColorYellow,
		Error:       tcell.ColorRed,

		TableHeader:   tcell.ColorYellow,
		TableHeaderBg: tcell.ColorBlack,
		TableRow:      tcell.ColorWhite,
		TableRowMuted: tcell.ColorSilver,

		TagTextPrimary: "white",
		TagMuted:       "silver",
		TagAccent:      "aqua",
		TagSuccess:     "lime",
		TagWarning:     "yellow",
		TagError:       "red",
	}
}

var themeOrder = []string{"dark", "light", "high-contrast"}

func themeByName(name string) (string, Theme) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return "light", themeLight()
	case "high-contrast", "contrast":
		return "high-contrast", themeHighContrast()
	}
	return "dark", themeDark()
}

func nextTheme(name string) string {
	for i, n := range themeOrder {
		if n == name {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// detectTrueColor falls back to the high-contrast palette on terminals
// that cannot show the hex colors.
func detectTrueColor() bool {
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return true
	}
	return strings.Contains(strings.ToLower(os.Getenv("TERM")), "256color")
}
