package mcpprobe

import (
	"encoding/json"
	"os"

	"github.com/sjzar/mcpprobe/internal/mcp"
	"github.com/sjzar/mcpprobe/internal/mcpprobe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVarP(&callTool, "tool", "T", "", "tool name, invoked via tools/call")
	callCmd.Flags().StringVarP(&callArgs, "args", "a", "", "json arguments")
}

var (
	callTool string
	callArgs string
)

var callCmd = &cobra.Command{
	Use:     "call [method]",
	Short:   "Invoke a single method or tool on a device",
	Example: `mcpprobe call ping
mcpprobe call --tool echo --args '{"message":"hi"}'`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		method := ""
		if len(args) > 0 {
			method = args[0]
		}
		if method == "" && callTool == "" {
			log.Error().Msg("method or --tool is required")
			os.Exit(1)
		}

		params := mcp.M{}
		if callArgs != "" {
			if err := json.Unmarshal([]byte(callArgs), &params); err != nil {
				log.Err(err).Msg("invalid --args json")
				os.Exit(1)
			}
		}

		m := mcpprobe.New()
		if err := m.CommandCall("", cmdConf(cmd), method, callTool, params); err != nil {
			log.Err(err).Msg("call failed")
			os.Exit(1)
		}
	},
}
