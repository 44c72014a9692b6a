package infobar

import (
	"fmt"
	"time"

	"github.com/sjzar/mcpprobe/internal/ui/style"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	Title = "infobar"
)

// InfoBarViewHeight info bar height.
const (
	InfoBarViewHeight = 5
	endpointRow       = 0
	statusRow         = 1
	trafficRow        = 2
	toolsRow          = 3
	lastResultRow     = 4

	// 列索引
	labelCol1 = 0 // 第一列标签
	valueCol1 = 1 // 第一列值
	labelCol2 = 2 // 第二列标签
	valueCol2 = 3 // 第二列值
)

// InfoBar implements the info bar primitive.
type InfoBar struct {
	*tview.Box
	title string
	table *tview.Table
}

// New returns info bar view.
func New() *InfoBar {
	table := tview.NewTable()
	headerColor := style.InfoBarItemFgColor

	cell := func(row, col int, label string) {
		table.SetCell(row, col, tview.NewTableCell(fmt.Sprintf(" [%s::]%s", headerColor, label)))
		table.SetCell(row, col+1, tview.NewTableCell(""))
	}

	// Endpoint 和 Transport 行
	cell(endpointRow, labelCol1, "Endpoint:")
	cell(endpointRow, labelCol2, "Transport:")

	// Status 和 Uptime 行
	cell(statusRow, labelCol1, "Status:")
	cell(statusRow, labelCol2, "Uptime:")

	// Sent 和 Received 行
	cell(trafficRow, labelCol1, "Sent:")
	cell(trafficRow, labelCol2, "Received:")

	// Tools 和 Success Rate 行
	cell(toolsRow, labelCol1, "Tools Executed:")
	cell(toolsRow, labelCol2, "Success Rate:")

	// Last Result 行
	cell(lastResultRow, labelCol1, "Last Result:")

	infoBar := &InfoBar{
		Box:   tview.NewBox(),
		title: Title,
		table: table,
	}

	return infoBar
}

func (info *InfoBar) UpdateEndpoint(endpoint string, transport string) {
	info.table.GetCell(endpointRow, valueCol1).SetText(endpoint)
	info.table.GetCell(endpointRow, valueCol2).SetText(transport)
}

func (info *InfoBar) UpdateStatus(status string) {
	info.table.GetCell(statusRow, valueCol1).SetText(status)
}

func (info *InfoBar) UpdateUptime(d time.Duration) {
	if d <= 0 {
		info.table.GetCell(statusRow, valueCol2).SetText("-")
		return
	}
	info.table.GetCell(statusRow, valueCol2).SetText(d.Truncate(time.Second).String())
}

func (info *InfoBar) UpdateTraffic(sent, received, errors int64) {
	info.table.GetCell(trafficRow, valueCol1).SetText(fmt.Sprintf("%d", sent))
	info.table.GetCell(trafficRow, valueCol2).SetText(fmt.Sprintf("%d (errors %d)", received, errors))
}

func (info *InfoBar) UpdateTools(executed int64, successRate float64) {
	info.table.GetCell(toolsRow, valueCol1).SetText(fmt.Sprintf("%d", executed))
	info.table.GetCell(toolsRow, valueCol2).SetText(fmt.Sprintf("%.1f%%", successRate))
}

// UpdateLastResult updates last tool call result.
func (info *InfoBar) UpdateLastResult(result string) {
	info.table.GetCell(lastResultRow, valueCol1).SetText(result)
}

// Draw draws this primitive onto the screen.
func (info *InfoBar) Draw(screen tcell.Screen) {
	info.Box.DrawForSubclass(screen, info)
	info.Box.SetBorder(false)

	x, y, width, height := info.GetInnerRect()

	info.table.SetRect(x, y, width, height)
	info.table.SetBorder(false)
	info.table.Draw(screen)
}
