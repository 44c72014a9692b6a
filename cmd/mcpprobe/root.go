package mcpprobe

import (
	"os"
	"time"

	"github.com/sjzar/mcpprobe/internal/mcpprobe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	// windows only
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVarP(&flagHost, "host", "H", "", "device ip address")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 8080, "device tcp port")
	rootCmd.PersistentFlags().StringVarP(&flagSerial, "serial", "s", "", "serial port path")
	rootCmd.PersistentFlags().IntVarP(&flagBaud, "baud", "b", 115200, "serial baud rate")
	rootCmd.PersistentFlags().DurationVarP(&flagTimeout, "timeout", "t", 0, "request timeout")
	rootCmd.PersistentPreRun = initLog
}

var (
	flagHost    string
	flagPort    int
	flagSerial  string
	flagBaud    int
	flagTimeout time.Duration
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "mcpprobe",
	Short:   "mcpprobe",
	Long:    `mcpprobe`,
	Example: `mcpprobe --host 192.168.1.100`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PreRun: initTuiLog,
	Run:    Root,
}

func Root(cmd *cobra.Command, args []string) {
	m := mcpprobe.New()
	if err := m.Run("", cmdConf(cmd)); err != nil {
		log.Err(err).Msg("failed to run mcpprobe instance")
	}
}

// cmdConf 收集命令行显式指定的连接参数，覆盖配置文件
func cmdConf(cmd *cobra.Command) map[string]any {
	conf := make(map[string]any)
	if cmd.Flags().Changed("host") {
		conf["host"] = flagHost
	}
	if cmd.Flags().Changed("port") {
		conf["port"] = flagPort
	}
	if cmd.Flags().Changed("serial") {
		conf["serial_port"] = flagSerial
	}
	if cmd.Flags().Changed("baud") {
		conf["baud_rate"] = flagBaud
	}
	if cmd.Flags().Changed("timeout") {
		conf["timeout"] = flagTimeout
	}
	return conf
}
