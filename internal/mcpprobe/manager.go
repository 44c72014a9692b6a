package mcpprobe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sjzar/mcpprobe/internal/client"
	"github.com/sjzar/mcpprobe/internal/discovery"
	apperrors "github.com/sjzar/mcpprobe/internal/errors"
	"github.com/sjzar/mcpprobe/internal/mcp"
	"github.com/sjzar/mcpprobe/internal/mcpprobe/conf"
	"github.com/sjzar/mcpprobe/pkg/config"

	"github.com/rs/zerolog/log"
)

// Manager 管理 mcpprobe 应用
type Manager struct {
	conf *conf.ProbeConfig
	cm   *config.Manager

	// Services
	stats  *client.Stats
	client *client.Client

	// Terminal UI
	app *App
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) init(configPath string, cmdConf map[string]any) error {
	var err error
	m.conf, m.cm, err = conf.Load(configPath, cmdConf)
	if err != nil {
		return err
	}

	m.stats = client.NewStats()
	m.client = client.New(client.NewConn(m.stats), m.stats, m.conf.Timeout)
	return nil
}

// Client 返回底层客户端，供 UI 使用
func (m *Manager) Client() *client.Client {
	return m.client
}

// Conf 返回当前配置
func (m *Manager) Conf() *conf.ProbeConfig {
	return m.conf
}

// Stats 返回运行统计
func (m *Manager) Stats() *client.Stats {
	return m.stats
}

// dialer 根据配置选择 TCP 或串口传输
func (m *Manager) dialer() (client.Dialer, error) {
	if m.conf.Host != "" {
		return client.TCPDialer(m.conf.Host, m.conf.Port, m.conf.Timeout), nil
	}
	if m.conf.SerialPort != "" {
		return client.SerialDialer(m.conf.SerialPort, m.conf.BaudRate), nil
	}
	return nil, apperrors.Config("no endpoint configured, set host or serial_port", nil)
}

// Connect 建立设备连接
func (m *Manager) Connect() error {
	dial, err := m.dialer()
	if err != nil {
		return err
	}
	return m.client.Connect(dial)
}

// Run 启动终端 UI
func (m *Manager) Run(configPath string, cmdConf map[string]any) error {
	if err := m.init(configPath, cmdConf); err != nil {
		return err
	}

	m.app = NewApp(m)
	return m.app.Run() // 阻塞
}

// CommandRun 执行完整的定时测试，所有测试通过时返回 nil
func (m *Manager) CommandRun(configPath string, cmdConf map[string]any) error {
	if err := m.init(configPath, cmdConf); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 连接失败直接终止，无连接无法执行任何测试
	if err := m.Connect(); err != nil {
		return err
	}
	defer m.client.Close()

	scheduler := client.NewScheduler(m.client)
	passed, err := scheduler.Run(ctx, m.conf.Duration, m.conf.Interval)

	// 无论正常结束还是中断，都输出统计
	m.stats.Snapshot().Log()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("test interrupted by user")
		}
		return err
	}
	if !passed {
		return apperrors.New(apperrors.ErrTypeInternal, "some tests failed", nil)
	}

	log.Info().Msg("all tests completed successfully")
	return nil
}

// CommandCall 执行单次调用并输出结果
func (m *Manager) CommandCall(configPath string, cmdConf map[string]any, method, tool string, args mcp.M) error {
	if err := m.init(configPath, cmdConf); err != nil {
		return err
	}

	if err := m.Connect(); err != nil {
		return err
	}
	defer m.client.Close()

	var resp *mcp.Response
	var err error
	if tool != "" {
		resp, err = m.client.CallTool(tool, args, 0)
	} else {
		resp, err = m.client.Call(method, args, 0)
	}
	if err != nil {
		return err
	}

	fmt.Println(string(resp.Result))
	return nil
}

// CommandDiscover 扫描本地网段寻找设备
func (m *Manager) CommandDiscover(configPath string, cmdConf map[string]any) error {
	if err := m.init(configPath, cmdConf); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ep, err := discovery.NewScan(m.conf.Port).Resolve(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s:%d\n", ep.Host, ep.Port)
	return nil
}

// CommandScrapeIP 从串口或日志文件提取设备地址
func (m *Manager) CommandScrapeIP(configPath string, cmdConf map[string]any, logFile string, quiet bool) error {
	if err := m.init(configPath, cmdConf); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ip string
	var err error
	if logFile != "" {
		ip, err = discovery.ScrapeFile(ctx, logFile)
	} else {
		ip, err = discovery.ScrapeSerial(ctx, m.conf.SerialPort, m.conf.BaudRate, m.conf.Timeout)
	}
	if err != nil {
		return err
	}

	if quiet {
		fmt.Println(ip)
	} else {
		log.Info().Msgf("device ip address: %s", ip)
	}
	return nil
}
