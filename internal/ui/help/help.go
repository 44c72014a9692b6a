package help

import (
	"fmt"

	"github.com/sjzar/mcpprobe/internal/ui/style"

	"github.com/rivo/tview"
)

const (
	Title     = "help"
	ShowTitle = "帮助"
	Content   = `[yellow]mcpprobe 使用指南[white]

[green]基本操作:[white]
• 使用 [yellow]←→[white] 键在主菜单和帮助页面之间切换
• 使用 [yellow]↑↓[white] 键在菜单项之间移动
• 按 [yellow]Enter[white] 选择菜单项
• 按 [yellow]Esc[white] 返回上一级菜单
• 按 [yellow]Ctrl+C[white] 退出程序

[green]使用步骤:[white]

[yellow]1. 连接设备[white]
   选择"连接设备"菜单项，与设备建立 TCP 连接（默认端口 8080）。
   设备地址可通过启动参数、配置文件或 MCPPROBE_HOST 环境变量指定。
   没有地址时可以用 [yellow]mcpprobe ip[white] 从串口日志提取，
   或用 [yellow]mcpprobe discover[white] 扫描本地网段。

[yellow]2. 单项测试[white]
   连接成功后可以逐项执行 ping、工具列表、回显、系统信息、
   GPIO 和显示屏测试，结果会显示在顶部信息栏。

[yellow]3. 完整测试[white]
   选择"执行完整测试"菜单项，按固定周期轮询全部工具，
   结束后在信息栏展示统计结果。
   命令行模式 [yellow]mcpprobe run[white] 功能相同，且在全部通过时以 0 退出。

[green]协议说明:[white]
设备端实现 JSON-RPC 2.0，消息以换行符分帧:
• [yellow]ping[white] - 连通性检查
• [yellow]tools/list[white] - 列出设备注册的全部工具
• [yellow]tools/call[white] - 调用工具: echo / system_info / gpio_control / display_control

[green]常见问题:[white]
• 连接被拒绝时，确认设备固件已启动且端口未被防火墙拦截
• 请求超时时，检查设备与主机是否在同一网段
• 串口打不开时，确认当前用户在 dialout 组中
`
)

type Help struct {
	*tview.TextView
	title string
}

func New() *Help {
	help := &Help{
		TextView: tview.NewTextView(),
		title:    Title,
	}

	help.SetDynamicColors(true)
	help.SetRegions(true)
	help.SetWrap(true)
	help.SetTextAlign(tview.AlignLeft)
	help.SetBorder(true)
	help.SetBorderColor(style.BorderColor)
	help.SetTitle(ShowTitle)

	fmt.Fprint(help, Content)

	return help
}
