package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hostport/hostport-go"
	"github.com/hostport/hostport-go/internal/config"
)

var (
	// Global flags
	cfgFile     string
	port        int
	device      string
	baud        int
	header      string
	terminator  string
	timeout     time.Duration
	resyncLimit int
	checksum    bool
	maxBuffered int
	traceLevel  string
	lang        string
	verbose     bool

	// Shared state set during PersistentPreRun
	cfg    *config.Config
	logger zerolog.Logger
	opener hostport.Opener
)

// rootCmd is the base command for hostport.
var rootCmd = &cobra.Command{
	Use:   "hostport",
	Short: "Exchange framed float32 samples with a device over a serial line",
	Long: `hostport opens a serial line and reads or writes frames of float32
samples delimited by an optional header and terminator. The encode and
decode commands work offline on hex dumps of frames.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd.Flags(), cfg)
		logger = newLogger(cmd.ErrOrStderr(), verbose)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetOpener allows tests to replace the serial device.
func SetOpener(o hostport.Opener) {
	opener = o
}

// RootCmd returns the root cobra.Command for testing purposes.
func RootCmd() *cobra.Command {
	return rootCmd
}

// configPath returns the --config path or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// applyFlags overrides file settings with the flags given on the command line.
func applyFlags(fs *pflag.FlagSet, c *config.Config) {
	if fs.Changed("port") {
		c.Port = port
	}
	if fs.Changed("device") {
		c.Device = device
	}
	if fs.Changed("baud") {
		c.Baud = baud
	}
	if fs.Changed("header") {
		c.Header = header
	}
	if fs.Changed("terminator") {
		c.Terminator = terminator
	}
	if fs.Changed("timeout") {
		c.Timeout = timeout
	}
	if fs.Changed("resync-limit") {
		c.ResyncLimit = resyncLimit
	}
	if fs.Changed("checksum") {
		c.Checksum = checksum
	}
	if fs.Changed("max-buffered") {
		c.MaxBuffered = maxBuffered
	}
	if fs.Changed("trace") {
		c.Trace = traceLevel
	}
	if fs.Changed("lang") {
		c.Lang = lang
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.hostport/config.yaml)")
	pf.IntVarP(&port, "port", "p", 0, "serial port number")
	pf.StringVarP(&device, "device", "d", "", "serial device path, overrides --port")
	pf.IntVarP(&baud, "baud", "b", int(hostport.DefaultBaudRate), "baud rate")
	pf.StringVar(&header, "header", "", "frame header, hex or decimal, \"none\" to disable")
	pf.StringVar(&terminator, "terminator", "", "frame terminator, hex or decimal, \"none\" to disable")
	pf.DurationVarP(&timeout, "timeout", "w", hostport.DefaultTimeout, "I/O timeout, 0 waits forever")
	pf.IntVar(&resyncLimit, "resync-limit", 0, "maximum bytes skipped before the header, 0 for no limit")
	pf.BoolVar(&checksum, "checksum", false, "frames carry a CRC-16/MODBUS of the payload")
	pf.IntVar(&maxBuffered, "max-buffered", 0, "received bytes kept between reads, 0 for the default")
	pf.StringVarP(&traceLevel, "trace", "t", "", "trace level (Off, Error, Warning, Info, Verbose)")
	pf.StringVar(&lang, "lang", "", "language of trace messages")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log trace messages")

	rootCmd.AddCommand(portsCmd, infoCmd, readCmd, writeCmd, encodeCmd, decodeCmd, configCmd)
}
