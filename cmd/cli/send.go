package main

import (
	"encoding/json"
	"fmt"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [driver]",
	Short: "Send a message through a driver",
	Long:  `Sends synchronously, bypassing the queue. An empty driver name uses the default driver.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSend,
}

var (
	sendMessage string
	sendData    string
	sendOptions string
)

func init() {
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message text")
	sendCmd.Flags().StringVar(&sendData, "data", "", "JSON object sent as data")
	sendCmd.Flags().StringVar(&sendOptions, "options", "", "JSON object sent as options")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	data, err := parseObject("data", sendData)
	if err != nil {
		return err
	}
	if sendMessage != "" {
		data["message"] = sendMessage
	}
	opts, err := parseObject("options", sendOptions)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	driver := ""
	if len(args) == 1 {
		driver = args[0]
	}

	resp, err := a.Client.Send(cmd.Context(), driver, data, automation.Options(opts))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(automation.Sanitize(map[string]any{"response": resp}), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	cmd.Println("✓ Sent")
	cmd.Println(string(out))
	return nil
}

func parseObject(flag, raw string) (map[string]any, error) {
	out := map[string]any{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing --%s: %w", flag, err)
	}
	return out, nil
}
