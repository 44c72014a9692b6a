package mcp

// Document: https://modelcontextprotocol.io/docs/concepts/tools

const (
	// Client => Server
	MethodPing      = "ping"
	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"
)

// Tool names exposed by the esp32-c6 firmware.
const (
	ToolEcho           = "echo"
	ToolSystemInfo     = "system_info"
	ToolGPIOControl    = "gpio_control"
	ToolDisplayControl = "display_control"
)

type M map[string]interface{}

// Tool
//
//	{
//		name: string;          // Unique identifier for the tool
//		description?: string;  // Human-readable description
//		inputSchema: {         // JSON Schema for the tool's parameters
//			type: "object",
//			properties: { ... }  // Tool-specific parameters
//		}
//	}
//
//	{
//		"jsonrpc": "2.0",
//		"id": 2,
//		"result": {
//		  "tools": [
//			{
//			  "name": "echo",
//			  "description": "Echo back the provided arguments"
//			},
//			{
//			  "name": "gpio_control",
//			  "description": "Control the onboard LED and read the boot button"
//			}
//		  ]
//		}
//	}
//
// The firmware omits inputSchema for most tools, so it is optional here.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema *ToolSchema `json:"inputSchema,omitempty"`
}

type ToolSchema struct {
	Type       string   `json:"type"`
	Properties M        `json:"properties"`
	Required   []string `json:"required,omitempty"`
}

// ToolsListResult is the result payload of a tools/list call.
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

//	{
//		"jsonrpc": "2.0",
//		"id": 3,
//		"method": "tools/call",
//		"params": {
//		  "name": "gpio_control",
//		  "arguments": {
//			"action": "set_led",
//			"state": true
//		  }
//		}
//	}
type ToolsCallParams struct {
	Name      string `json:"name"`
	Arguments M      `json:"arguments"`
}

// SystemInfoData is the data member of a system_info result. The firmware
// may omit fields depending on its build, missing values are reported as
// Unknown/0 rather than treated as failures.
type SystemInfoData struct {
	ChipModel  string `json:"chip_model"`
	IDFVersion string `json:"idf_version"`
	FreeHeap   int64  `json:"free_heap"`
	UptimeMS   int64  `json:"uptime_ms"`
}

// SystemInfoResult is the result payload of a system_info tool call.
type SystemInfoResult struct {
	Data SystemInfoData `json:"data"`
}
