package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/smazurov/ledmcp/internal/led"
	"github.com/smazurov/ledmcp/internal/logging"
	"github.com/smazurov/ledmcp/internal/tools"
	"github.com/spf13/cobra"
)

// ErrToolFailed is returned when a dispatched tool reports failure.
var ErrToolFailed = errors.New("tool call failed")

// CreateCallCmd creates the call command for one-shot local tool dispatch.
// Each invocation starts from a fresh LED state.
func CreateCallCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "call <tool> [key=value ...]",
		Short: "Invoke a single LED tool locally",
		Long: `Dispatches one tool call against a fresh simulated LED and prints the reply. ` +
			`Values are decoded as JSON when possible, so brightness=50 is a number and color=red a string.`,
		Example:      "  ledmcp call set_brightness brightness=40\n  ledmcp call set_led_color color=blue --json",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := ParseCallArgs(args[1:])
			if err != nil {
				return err
			}

			logging.Initialize(logging.Config{Level: "warn", Output: logging.OutputStderr, NoJournal: true})
			device := led.NewDevice(logging.GetLogger("led"))
			dispatcher := tools.NewDispatcher(device, logging.GetLogger("tools"))

			res := dispatcher.Call(contextOrBackground(cmd), args[0], callArgs)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			}

			if !res.OK {
				return fmt.Errorf("%w: %s", ErrToolFailed, args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// ParseCallArgs turns key=value pairs into tool arguments.
// Values that parse as JSON keep their JSON type; anything else is a string.
func ParseCallArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		out[key] = value
	}
	return out, nil
}
