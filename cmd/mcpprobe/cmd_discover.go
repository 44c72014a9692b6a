package mcpprobe

import (
	"os"

	"github.com/sjzar/mcpprobe/internal/mcpprobe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan local subnets for a listening device",
	Run: func(cmd *cobra.Command, args []string) {
		m := mcpprobe.New()
		if err := m.CommandDiscover("", cmdConf(cmd)); err != nil {
			log.Err(err).Msg("no device found")
			os.Exit(1)
		}
	},
}
