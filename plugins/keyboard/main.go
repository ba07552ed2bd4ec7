// Package main provides a keyboard plugin for macOS.
// It turns wave gestures into arrow key presses and sends keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action    string          `json:"action"`
	Gesture   string          `json:"gesture"`
	Magnitude int             `json:"magnitude"`
	Session   string          `json:"session"`
	Params    json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

// arrowKeyCodes maps gesture directions to macOS virtual key codes. Long
// waves page instead of stepping.
var arrowKeyCodes = map[string]int{
	"Left":      123,
	"Right":     124,
	"Down":      125,
	"Up":        126,
	"Long down": 121, // page down
	"Long up":   116, // page up
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	script, err := buildScript(req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}
	if err := runAppleScript(script); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// buildScript returns the AppleScript for a request.
func buildScript(req Request) (string, error) {
	switch req.Action {
	case "arrow":
		code, ok := arrowKeyCodes[req.Gesture]
		if !ok {
			return "", fmt.Errorf("no key for gesture %q", req.Gesture)
		}
		return fmt.Sprintf(`tell application "System Events" to key code %d`, code), nil
	case "keystroke", "shortcut":
		var p KeystrokeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Key == "" {
			return "", fmt.Errorf("key is required")
		}
		return buildKeystrokeScript(p.Key, p.Modifiers), nil
	default:
		return "", fmt.Errorf("unknown action: %s", req.Action)
	}
}

// appleScriptEscaper escapes text for an AppleScript string literal.
var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	key = appleScriptEscaper.Replace(key)

	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	modifierList := strings.Join(appleModifiers, ", ")
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, modifierList)
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
