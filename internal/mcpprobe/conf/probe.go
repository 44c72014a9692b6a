package conf

import (
	"fmt"
	"time"
)

const (
	DefaultPort       = 8080
	DefaultSerialPort = "/dev/ttyACM0"
	DefaultBaudRate   = 115200
)

// ProbeConfig 探测配置
type ProbeConfig struct {
	Host       string        `mapstructure:"host" json:"host"`
	Port       int           `mapstructure:"port" json:"port"`
	SerialPort string        `mapstructure:"serial_port" json:"serial_port"`
	BaudRate   int           `mapstructure:"baud_rate" json:"baud_rate"`
	Duration   time.Duration `mapstructure:"duration" json:"duration"`
	Interval   time.Duration `mapstructure:"interval" json:"interval"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`
	WorkDir    string        `mapstructure:"work_dir" json:"work_dir"`

	ConfigDir string `mapstructure:"-" json:"-"`
}

var ProbeDefaults = map[string]any{
	"port":        DefaultPort,
	"serial_port": DefaultSerialPort,
	"baud_rate":   DefaultBaudRate,
	"duration":    "60s",
	"interval":    "10s",
	"timeout":     "10s",
}

// UseSerial 是否使用串口传输
func (c *ProbeConfig) UseSerial() bool {
	return c.Host == "" && c.SerialPort != ""
}

// Endpoint 返回用于展示的端点描述
func (c *ProbeConfig) Endpoint() string {
	if c.UseSerial() {
		return c.SerialPort
	}
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
