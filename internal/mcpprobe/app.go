package mcpprobe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sjzar/mcpprobe/internal/client"
	"github.com/sjzar/mcpprobe/internal/ui/footer"
	"github.com/sjzar/mcpprobe/internal/ui/form"
	"github.com/sjzar/mcpprobe/internal/ui/help"
	"github.com/sjzar/mcpprobe/internal/ui/infobar"
	"github.com/sjzar/mcpprobe/internal/ui/menu"
	"github.com/sjzar/mcpprobe/internal/ui/style"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	RefreshInterval = 1000 * time.Millisecond
)

type App struct {
	*tview.Application

	m           *Manager
	stopRefresh chan struct{}

	// 最近一次操作的结果
	mu         sync.Mutex
	lastResult string

	// 完整测试的取消函数，非空表示测试进行中
	suiteCancel context.CancelFunc

	// page
	mainPages *tview.Pages
	infoBar   *infobar.InfoBar
	tabPages  *tview.Pages
	footer    *footer.Footer

	// tab
	menu      *menu.Menu
	help      *help.Help
	activeTab int
	tabCount  int
}

func NewApp(m *Manager) *App {
	app := &App{
		m:           m,
		Application: tview.NewApplication(),
		stopRefresh: make(chan struct{}),
		mainPages:   tview.NewPages(),
		infoBar:     infobar.New(),
		tabPages:    tview.NewPages(),
		footer:      footer.New(),
		menu:        menu.New("主菜单"),
		help:        help.New(),
	}

	app.initMenu()

	app.updateMenuItemsState()

	return app
}

func (a *App) Run() error {

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.infoBar, infobar.InfoBarViewHeight, 0, false).
		AddItem(a.tabPages, 0, 1, true).
		AddItem(a.footer, 1, 1, false)

	a.mainPages.AddPage("main", flex, true, true)

	a.tabPages.
		AddPage("0", a.menu, true, true).
		AddPage("1", a.help, true, false)
	a.tabCount = 2

	a.SetInputCapture(a.inputCapture)

	go a.refresh()

	if err := a.SetRoot(a.mainPages, true).EnableMouse(false).Run(); err != nil {
		return err
	}

	return nil
}

func (a *App) Stop() {
	if a.stopRefresh != nil {
		close(a.stopRefresh)
		a.stopRefresh = nil
	}
	if a.suiteCancel != nil {
		a.suiteCancel()
	}
	a.m.Client().Close()
	a.Application.Stop()
}

func (a *App) setLastResult(text string) {
	a.mu.Lock()
	a.lastResult = text
	a.mu.Unlock()
}

func (a *App) getLastResult() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResult
}

func (a *App) connected() bool {
	return a.m.Client().Conn().State() == client.StateConnected
}

func (a *App) updateMenuItemsState() {
	for _, item := range a.menu.GetItems() {
		// 连接状态切换连接/断开菜单项
		if item.Index == 1 {
			if a.connected() {
				item.Name = "断开连接"
				item.Description = "断开与设备的连接"
			} else {
				item.Name = "连接设备"
				item.Description = "与设备建立 TCP 或串口连接"
			}
		}

		// 完整测试进行中时更新菜单项
		if item.Index == 13 {
			if a.suiteCancel != nil {
				item.Name = "停止完整测试"
				item.Description = "中断正在执行的定时测试"
			} else {
				item.Name = "执行完整测试"
				item.Description = "按固定周期轮询全部工具并统计结果"
			}
		}
	}
}

func (a *App) switchTab(step int) {
	index := (a.activeTab + step) % a.tabCount
	if index < 0 {
		index = a.tabCount - 1
	}
	a.activeTab = index
	a.tabPages.SwitchToPage(fmt.Sprint(a.activeTab))
}

func (a *App) refresh() {
	tick := time.NewTicker(RefreshInterval)
	defer tick.Stop()

	stop := a.stopRefresh
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			conn := a.m.Client().Conn()
			conf := a.m.Conf()

			endpoint := conn.Remote()
			if endpoint == "" {
				endpoint = conf.Endpoint()
			}
			transport := "tcp"
			if conf.UseSerial() {
				transport = "serial"
			}
			a.infoBar.UpdateEndpoint(endpoint, transport)

			state := conn.State()
			switch state {
			case client.StateConnected:
				a.infoBar.UpdateStatus(fmt.Sprintf("[green]%s[white]", state))
				a.infoBar.UpdateUptime(time.Since(conn.ConnectedAt()))
			case client.StateErrored:
				a.infoBar.UpdateStatus(fmt.Sprintf("[red]%s[white]", state))
				a.infoBar.UpdateUptime(0)
			default:
				a.infoBar.UpdateStatus(state.String())
				a.infoBar.UpdateUptime(0)
			}

			snap := a.m.Stats().Snapshot()
			a.infoBar.UpdateTraffic(snap.Sent, snap.Received, snap.Errors)
			a.infoBar.UpdateTools(snap.ToolsExecuted, snap.SuccessRate)
			a.infoBar.UpdateLastResult(a.getLastResult())

			a.Draw()
		}
	}
}

func (a *App) inputCapture(event *tcell.EventKey) *tcell.EventKey {

	// 表单页面按 ESC 返回主页面
	if a.mainPages.HasPage("form") && event.Key() == tcell.KeyEscape {
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
		return nil
	}

	if a.tabPages.HasFocus() {
		switch event.Key() {
		case tcell.KeyLeft:
			a.switchTab(-1)
			return nil
		case tcell.KeyRight:
			a.switchTab(1)
			return nil
		}
	}

	switch event.Key() {
	case tcell.KeyCtrlC:
		a.Stop()
	}

	return event
}

// runTask 弹出模态框，在后台执行操作并在完成后更新模态框
func (a *App) runTask(initial, okText string, task func() error) {
	modal := tview.NewModal().SetText(initial)

	a.mainPages.AddPage("modal", modal, true, true)
	a.SetFocus(modal)

	go func() {
		err := task()

		a.QueueUpdateDraw(func() {
			if err != nil {
				modal.SetText(initial + "失败: " + err.Error())
				a.setLastResult(style.HeavyRedCrossMark + " " + err.Error())
			} else {
				modal.SetText(okText)
				a.setLastResult(style.HeavyGreenCheckMark + " " + okText)
			}

			a.updateMenuItemsState()

			modal.AddButtons([]string{"OK"})
			modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				a.mainPages.RemovePage("modal")
			})
			a.SetFocus(modal)
		})
	}()
}

func (a *App) initMenu() {

	connect := &menu.Item{
		Index:       1,
		Name:        "连接设备",
		Description: "与设备建立 TCP 或串口连接",
		Selected: func(i *menu.Item) {
			if a.connected() {
				a.runTask("断开连接", "已断开连接", func() error {
					return a.m.Client().Close()
				})
				return
			}
			a.runTask("连接设备中...", "连接成功", func() error {
				return a.m.Connect()
			})
		},
	}

	endpoint := &menu.Item{
		Index:       2,
		Name:        "设置设备地址",
		Description: "修改设备 IP、端口或串口参数",
		Selected: func(i *menu.Item) {
			a.showEndpointForm()
		},
	}

	ping := &menu.Item{
		Index:       3,
		Name:        "Ping 测试",
		Description: "检查设备连通性",
		Selected: func(i *menu.Item) {
			a.runTask("Ping 测试中...", "设备响应正常", func() error {
				return a.m.Client().Ping()
			})
		},
	}

	listTools := &menu.Item{
		Index:       4,
		Name:        "工具列表",
		Description: "列出设备注册的全部工具",
		Selected: func(i *menu.Item) {
			modal := tview.NewModal().SetText("获取工具列表中...")
			a.mainPages.AddPage("modal", modal, true, true)
			a.SetFocus(modal)

			go func() {
				tools, err := a.m.Client().ListTools()

				a.QueueUpdateDraw(func() {
					if err != nil {
						modal.SetText("获取工具列表失败: " + err.Error())
						a.setLastResult(style.HeavyRedCrossMark + " " + err.Error())
					} else {
						text := fmt.Sprintf("设备注册了 %d 个工具:\n", len(tools))
						for _, tool := range tools {
							text += fmt.Sprintf("\n%s - %s", tool.Name, tool.Description)
						}
						modal.SetText(text)
						a.setLastResult(fmt.Sprintf("%s 工具列表 (%d)", style.HeavyGreenCheckMark, len(tools)))
					}

					modal.AddButtons([]string{"OK"})
					modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
						a.mainPages.RemovePage("modal")
					})
					a.SetFocus(modal)
				})
			}()
		},
	}

	echo := &menu.Item{
		Index:       5,
		Name:        "回显测试",
		Description: "发送 echo 请求并校验返回内容",
		Selected: func(i *menu.Item) {
			a.runTask("回显测试中...", "回显测试通过", func() error {
				return a.m.Client().TestEcho("Hello from mcpprobe!")
			})
		},
	}

	sysInfo := &menu.Item{
		Index:       6,
		Name:        "系统信息",
		Description: "读取芯片型号、固件版本与内存状态",
		Selected: func(i *menu.Item) {
			a.runTask("读取系统信息中...", "系统信息读取成功", func() error {
				return a.m.Client().TestSystemInfo()
			})
		},
	}

	gpio := &menu.Item{
		Index:       7,
		Name:        "GPIO 测试",
		Description: "控制 LED 并读取按键状态",
		Selected: func(i *menu.Item) {
			a.runTask("GPIO 测试中...", "GPIO 测试通过", func() error {
				return a.m.Client().TestGPIO()
			})
		},
	}

	ledOn := &menu.Item{
		Index:       8,
		Name:        "打开 LED",
		Description: "点亮设备 LED",
		Selected: func(i *menu.Item) {
			a.runTask("打开 LED 中...", "LED 已点亮", func() error {
				return a.m.Client().SetLED(true)
			})
		},
	}

	ledOff := &menu.Item{
		Index:       9,
		Name:        "关闭 LED",
		Description: "熄灭设备 LED",
		Selected: func(i *menu.Item) {
			a.runTask("关闭 LED 中...", "LED 已熄灭", func() error {
				return a.m.Client().SetLED(false)
			})
		},
	}

	readButton := &menu.Item{
		Index:       10,
		Name:        "读取按键",
		Description: "读取设备按键状态",
		Selected: func(i *menu.Item) {
			a.runTask("读取按键中...", "按键状态读取成功", func() error {
				_, err := a.m.Client().ReadButton()
				return err
			})
		},
	}

	display := &menu.Item{
		Index:       11,
		Name:        "显示屏测试",
		Description: "读取屏幕信息并绘制测试文本",
		Selected: func(i *menu.Item) {
			a.runTask("显示屏测试中...", "显示屏测试通过", func() error {
				return a.m.Client().TestDisplay()
			})
		},
	}

	showText := &menu.Item{
		Index:       12,
		Name:        "发送文本",
		Description: "在设备屏幕上显示自定义文本",
		Selected: func(i *menu.Item) {
			a.showTextForm()
		},
	}

	suite := &menu.Item{
		Index:       13,
		Name:        "执行完整测试",
		Description: "按固定周期轮询全部工具并统计结果",
		Selected: func(i *menu.Item) {
			if a.suiteCancel != nil {
				a.suiteCancel()
				return
			}
			a.startSuite()
		},
	}

	quit := &menu.Item{
		Index:       14,
		Name:        "退出",
		Description: "关闭连接并退出程序",
		Selected: func(i *menu.Item) {
			a.Stop()
		},
	}

	a.menu.SetItems([]*menu.Item{
		connect,
		endpoint,
		ping,
		listTools,
		echo,
		sysInfo,
		gpio,
		ledOn,
		ledOff,
		readButton,
		display,
		showText,
		suite,
		quit,
	})
}

// startSuite 在后台执行完整的定时测试
func (a *App) startSuite() {
	ctx, cancel := context.WithCancel(context.Background())
	a.suiteCancel = cancel
	a.updateMenuItemsState()
	a.setLastResult("完整测试进行中...")

	conf := a.m.Conf()
	scheduler := client.NewScheduler(a.m.Client())
	scheduler.SetBattery(client.ExtendedBattery(a.m.Client()))

	go func() {
		passed, err := scheduler.Run(ctx, conf.Duration, conf.Interval)
		cancel()

		a.QueueUpdateDraw(func() {
			a.suiteCancel = nil
			a.updateMenuItemsState()

			switch {
			case errors.Is(err, context.Canceled):
				a.setLastResult("完整测试已中断")
			case err != nil:
				a.setLastResult(style.HeavyRedCrossMark + " 完整测试失败: " + err.Error())
			case passed:
				a.setLastResult(style.HeavyGreenCheckMark + " 完整测试全部通过")
			default:
				a.setLastResult(style.HeavyRedCrossMark + " 完整测试存在失败项")
			}
		})
	}()
}

func (a *App) showEndpointForm() {
	conf := a.m.Conf()

	host := conf.Host
	port := strconv.Itoa(conf.Port)
	serialPort := conf.SerialPort
	baudRate := strconv.Itoa(conf.BaudRate)

	formView := form.NewForm("设置设备地址")
	formView.AddInputField("设备 IP", host, 24, nil, func(text string) {
		host = text
	})
	formView.AddInputField("端口", port, 8, tview.InputFieldInteger, func(text string) {
		port = text
	})
	formView.AddInputField("串口", serialPort, 24, nil, func(text string) {
		serialPort = text
	})
	formView.AddInputField("波特率", baudRate, 8, tview.InputFieldInteger, func(text string) {
		baudRate = text
	})

	formView.AddButton("确定", func() {
		conf.Host = host
		if v, err := strconv.Atoi(port); err == nil && v > 0 {
			conf.Port = v
		}
		conf.SerialPort = serialPort
		if v, err := strconv.Atoi(baudRate); err == nil && v > 0 {
			conf.BaudRate = v
		}
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
	})
	formView.AddButton("取消", func() {
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
	})
	formView.SetCancelFunc(func() {
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
	})

	a.mainPages.AddPage("form", formView, true, true)
	a.SetFocus(formView)
}

func (a *App) showTextForm() {
	text := "Hello ESP32"
	x := "10"
	y := "50"

	formView := form.NewForm("发送文本")
	formView.AddInputField("文本", text, 32, nil, func(t string) {
		text = t
	})
	formView.AddInputField("X", x, 6, tview.InputFieldInteger, func(t string) {
		x = t
	})
	formView.AddInputField("Y", y, 6, tview.InputFieldInteger, func(t string) {
		y = t
	})

	formView.AddButton("发送", func() {
		posX, _ := strconv.Atoi(x)
		posY, _ := strconv.Atoi(y)
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")

		a.runTask("发送文本中...", "文本已显示", func() error {
			return a.m.Client().ShowText(text, posX, posY)
		})
	})
	formView.AddButton("取消", func() {
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
	})
	formView.SetCancelFunc(func() {
		a.mainPages.RemovePage("form")
		a.mainPages.SwitchToPage("main")
	})

	a.mainPages.AddPage("form", formView, true, true)
	a.SetFocus(formView)
}
