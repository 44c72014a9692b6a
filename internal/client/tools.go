package client

import (
	"time"

	"github.com/sjzar/mcpprobe/internal/mcp"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tool helpers translate logical tests into tools/call invocations and
// classify the outcome. Success means the response carried a result; result
// shapes are logged, never strictly validated, the firmware is allowed to
// omit fields.

// Ping checks basic connectivity.
func (c *Client) Ping() error {
	resp, err := c.Call(mcp.MethodPing, nil, 0)
	if err != nil {
		return err
	}
	log.Info().RawJSON("result", resp.Result).Msg("ping ok")
	return nil
}

// ListTools fetches the declared tool set.
func (c *Client) ListTools() ([]mcp.Tool, error) {
	resp, err := c.Call(mcp.MethodToolsList, nil, 0)
	if err != nil {
		return nil, err
	}

	var result mcp.ToolsListResult
	if err := resp.UnmarshalResult(&result); err != nil {
		return nil, err
	}
	for _, tool := range result.Tools {
		log.Info().Msgf("  - %s: %s", tool.Name, tool.Description)
	}
	return result.Tools, nil
}

// CallTool invokes a named tool through the generic tools/call method.
func (c *Client) CallTool(name string, args mcp.M, timeout time.Duration) (*mcp.Response, error) {
	if args == nil {
		args = mcp.M{}
	}
	resp, err := c.Call(mcp.MethodToolsCall, mcp.M{
		"name":      name,
		"arguments": args,
	}, timeout)
	if err != nil {
		return resp, err
	}
	c.stats.IncToolsExecuted()
	return resp, nil
}

// TestEcho sends a tagged payload through the echo tool.
func (c *Client) TestEcho(message string) error {
	log.Info().Msg("testing echo tool")

	resp, err := c.CallTool(mcp.ToolEcho, mcp.M{
		"message":   message,
		"timestamp": time.Now().Unix(),
		"test_id":   uuid.NewString(),
	}, 0)
	if err != nil {
		return err
	}
	log.Info().RawJSON("result", resp.Result).Msg("echo tool response")
	return nil
}

// TestSystemInfo queries the device and logs the key fields. Fields the
// firmware leaves out are reported as Unknown/0, not treated as a failure.
func (c *Client) TestSystemInfo() error {
	log.Info().Msg("testing system tool")

	resp, err := c.CallTool(mcp.ToolSystemInfo, mcp.M{
		"action": "get_info",
	}, 0)
	if err != nil {
		return err
	}

	var result mcp.SystemInfoResult
	if err := resp.UnmarshalResult(&result); err != nil {
		log.Warn().Err(err).Msg("system_info result not parseable, treating as opaque")
		return nil
	}
	data := result.Data
	if data.ChipModel == "" {
		data.ChipModel = "Unknown"
	}
	if data.IDFVersion == "" {
		data.IDFVersion = "Unknown"
	}
	log.Info().Msgf("  - chip: %s", data.ChipModel)
	log.Info().Msgf("  - idf version: %s", data.IDFVersion)
	log.Info().Msgf("  - free heap: %d bytes", data.FreeHeap)
	log.Info().Msgf("  - uptime: %d ms", data.UptimeMS)
	return nil
}

// SetLED drives the onboard LED through the gpio tool.
func (c *Client) SetLED(on bool) error {
	_, err := c.CallTool(mcp.ToolGPIOControl, mcp.M{
		"action": "set_led",
		"state":  on,
	}, 0)
	return err
}

// ReadButton samples the boot button state.
func (c *Client) ReadButton() (*mcp.Response, error) {
	return c.CallTool(mcp.ToolGPIOControl, mcp.M{
		"action": "read_button",
	}, 0)
}

// TestGPIO blinks the LED and reads the button, the same sequence the
// firmware bring-up checks use.
func (c *Client) TestGPIO() error {
	log.Info().Msg("testing gpio tool")

	if err := c.SetLED(true); err != nil {
		return err
	}
	time.Sleep(time.Second)
	if err := c.SetLED(false); err != nil {
		return err
	}

	resp, err := c.ReadButton()
	if err != nil {
		return err
	}
	log.Info().RawJSON("result", resp.Result).Msg("button state")
	return nil
}

// DisplayInfo queries the display parameters.
func (c *Client) DisplayInfo() (*mcp.Response, error) {
	return c.CallTool(mcp.ToolDisplayControl, mcp.M{
		"action": "get_info",
	}, 0)
}

// ShowText renders text on the device display.
func (c *Client) ShowText(text string, x, y int) error {
	_, err := c.CallTool(mcp.ToolDisplayControl, mcp.M{
		"action": "show_text",
		"text":   text,
		"x":      x,
		"y":      y,
	}, 0)
	return err
}

// TestDisplay queries display info then renders a timestamped test line at
// the usual 10,50 position.
func (c *Client) TestDisplay() error {
	log.Info().Msg("testing display tool")

	resp, err := c.DisplayInfo()
	if err != nil {
		return err
	}
	log.Info().RawJSON("result", resp.Result).Msg("display info")

	text := "MCP Client Test " + time.Now().Format("15:04:05")
	return c.ShowText(text, 10, 50)
}
