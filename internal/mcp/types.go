package mcp

import "github.com/1broseidon/tagwm/internal/ipc"

// GetStateInput is the input for the get_state tool.
type GetStateInput struct {
	Monitor *int `json:"monitor,omitempty" jsonschema:"Optional monitor index. When set, only that monitor is returned."`
}

// GetStateOutput is the output for the get_state tool.
type GetStateOutput struct {
	State ipc.StateData `json:"state"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string   `json:"command" jsonschema:"required,Window manager command name (e.g. view, tag, zoom, setlayout, spawn)"`
	Arg     string   `json:"arg,omitempty" jsonschema:"Command argument as written in a key binding (e.g. 3 for view, all, +0.05 for setmfact, monocle for setlayout)"`
	Args    []string `json:"args,omitempty" jsonschema:"Explicit argv for spawn. Takes precedence over arg."`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
}

// SetStatusInput is the input for the set_status tool.
type SetStatusInput struct {
	Text string `json:"text" jsonschema:"Status text shown at the right of the bar. Empty text restores the root window name."`
}

// SetStatusOutput is the output for the set_status tool.
type SetStatusOutput struct {
	Text string `json:"text"`
}

// ReloadInput is the input for the reload tool.
type ReloadInput struct{}

// ReloadOutput is the output for the reload tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
