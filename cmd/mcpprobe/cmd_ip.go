package mcpprobe

import (
	"os"

	"github.com/sjzar/mcpprobe/internal/mcpprobe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ipCmd)
	ipCmd.Flags().StringVarP(&ipLogFile, "log-file", "f", "", "scrape a boot log file instead of the serial port")
	ipCmd.Flags().BoolVarP(&ipQuiet, "quiet", "q", false, "print only the ip address")
}

var (
	ipLogFile string
	ipQuiet   bool
)

var ipCmd = &cobra.Command{
	Use:   "ip",
	Short: "Extract the device ip address from serial output or a log file",
	Example: `mcpprobe ip --serial /dev/ttyACM0
mcpprobe ip --log-file boot.log --quiet`,
	Run: func(cmd *cobra.Command, args []string) {
		m := mcpprobe.New()
		if err := m.CommandScrapeIP("", cmdConf(cmd), ipLogFile, ipQuiet); err != nil {
			log.Err(err).Msg("no ip address found")
			os.Exit(1)
		}
	},
}
