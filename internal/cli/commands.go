package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostport/hostport-go"
)

var (
	readCount   int
	readFrames  int
	decodeCount int
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := hostport.GetPortNames()
		if err != nil {
			return fmt.Errorf("failed to get available serial ports: %w", err)
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Open the configured channel and print its settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ch, err := openChannel()
		if err != nil {
			return err
		}
		defer closeChannel(ch)
		fmt.Fprint(cmd.OutOrStdout(), ch.String())
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read frames and print their samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if readCount < 0 || readFrames < 1 {
			return errors.New("count must be >= 0 and frames >= 1")
		}
		ch, err := openChannel()
		if err != nil {
			return err
		}
		defer closeChannel(ch)
		buf := make([]float32, readCount)
		for i := 0; i < readFrames; i++ {
			if err := ch.Read(buf); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValues(buf))
		}
		logger.Debug().Uint64("received", ch.GetBytesReceived()).Msg("read done")
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <values...>",
	Short: "Write one frame of samples",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args)
		if err != nil {
			return err
		}
		ch, err := openChannel()
		if err != nil {
			return err
		}
		defer closeChannel(ch)
		if err := ch.Write(values); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d bytes sent\n", ch.GetBytesSent())
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <values...>",
	Short: "Print the hex frame for samples",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args)
		if err != nil {
			return err
		}
		chCfg, err := cfg.ChannelConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(chCfg.Codec().Encode(values)))
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode one frame from a hex dump",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if decodeCount < 0 {
			return errors.New("count must be >= 0")
		}
		data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, "")), ""))
		if err != nil {
			return fmt.Errorf("invalid hex: %w", err)
		}
		chCfg, err := cfg.ChannelConfig()
		if err != nil {
			return err
		}
		buf := make([]float32, decodeCount)
		n, err := chCfg.Codec().DecodeBytes(data, buf)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		logger.Debug().Int("consumed", n).Int("trailing", len(data)-n).Msg("frame decoded")
		fmt.Fprintln(cmd.OutOrStdout(), formatValues(buf))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the configuration merged with the given flags to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := cfg.ChannelConfig(); err != nil {
			return err
		}
		path := configPath()
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		logger.Debug().Str("path", path).Msg("configuration saved")
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSaveCmd)
	readCmd.Flags().IntVarP(&readCount, "count", "n", 1, "samples per frame")
	readCmd.Flags().IntVar(&readFrames, "frames", 1, "number of frames to read")
	decodeCmd.Flags().IntVarP(&decodeCount, "count", "n", 1, "samples per frame")
}
