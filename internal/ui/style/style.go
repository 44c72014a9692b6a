package style

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	// HeavyGreenCheckMark unicode.
	HeavyGreenCheckMark = "✅"
	// HeavyRedCrossMark unicode.
	HeavyRedCrossMark = "❌"
)

var (
	// infobar.
	InfoBarItemFgColor = tcell.ColorSilver
	// main views.
	FgColor              = tcell.ColorFloralWhite
	BgColor              = tview.Styles.PrimitiveBackgroundColor
	BorderColor          = tcell.NewRGBColor(135, 175, 146) //nolint:mnd
	HelpHeaderFgColor    = tcell.NewRGBColor(135, 175, 146) //nolint:mnd
	MenuBgColor          = tcell.ColorMediumSeaGreen
	PageHeaderBgColor    = tcell.ColorMediumSeaGreen
	PageHeaderFgColor    = tcell.ColorFloralWhite
	RunningStatusFgColor = tcell.NewRGBColor(95, 215, 0)  //nolint:mnd
	PausedStatusFgColor  = tcell.NewRGBColor(255, 175, 0) //nolint:mnd
	// dialogs.
	DialogBgColor     = tcell.NewRGBColor(38, 38, 38) //nolint:mnd
	DialogBorderColor = tcell.ColorMediumSeaGreen
	DialogFgColor     = tcell.ColorFloralWhite
	// other primitives.
	InputFieldBgColor = tcell.ColorGray
	ButtonBgColor     = tcell.ColorMediumSeaGreen
)

// GetColorHex returns convert tcell color to its hex useful for textview primitives.
func GetColorHex(color tcell.Color) string {
	return fmt.Sprintf("#%x", color.Hex())
}
