package mcpprobe

import (
	"os"
	"time"

	"github.com/sjzar/mcpprobe/internal/mcpprobe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVarP(&runDuration, "duration", "d", 0, "total test duration")
	runCmd.Flags().DurationVarP(&runInterval, "interval", "i", 0, "cycle interval")
}

var (
	runDuration time.Duration
	runInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full test suite against a device",
	Run: func(cmd *cobra.Command, args []string) {
		conf := cmdConf(cmd)
		if cmd.Flags().Changed("duration") {
			conf["duration"] = runDuration
		}
		if cmd.Flags().Changed("interval") {
			conf["interval"] = runInterval
		}

		m := mcpprobe.New()
		if err := m.CommandRun("", conf); err != nil {
			log.Err(err).Msg("test run failed")
			os.Exit(1)
		}
	},
}
