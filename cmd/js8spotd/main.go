package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/config"
	"github.com/dougsko/js8spotd/pkg/control"
	"github.com/dougsko/js8spotd/pkg/logging"
	"github.com/dougsko/js8spotd/pkg/verbose"
)

const (
	Version = "0.1.0-dev"
	Build   = "development"
)

var (
	// pflag shorthands are restricted to a single ASCII rune, so the
	// two-letter short forms below (po, sm, ma) are registered as
	// long-only flags; -f/-a/-d/-m/-v keep their single-letter shorthand.
	configPath = pflag.String("config", "config.yaml", "Configuration file path")
	action     = pflag.StringP("action", "a", "status", "Action: start, stop, or status")
	printOnly  = pflag.Bool("print-only", false, "Print rebuild output instead of overwriting archives")
	freqs      = pflag.StringArrayP("freq", "f", nil, "Frequency in kHz (repeatable); defaults to every band")
	submodes   = pflag.StringArray("sub-mode", nil, "Submode name (repeatable); defaults to every submode")
	mode       = pflag.StringP("mode", "m", "", "Radio mode override (usb/lsb), reserved for future use")
	dataDir    = pflag.StringP("data-dir", "d", "", "Data root directory, overrides the config file")
	mcastAddr  = pflag.String("mcast-addr", "", "Recording multicast address, overrides the config file")
	verboseFlag = pflag.BoolP("verbose", "v", false, "Enable verbose logging")

	aprsis       = pflag.Bool("aprsis", false, "Enable APRS-IS dispatch, overriding the config file")
	aprsHost     = pflag.String("aprsis-host", "", "APRS-IS server host, overrides the config file")
	aprsPort     = pflag.Int("aprsis-port", 0, "APRS-IS server port, overrides the config file")
	aprsUser     = pflag.String("aprsis-user", "", "APRS-IS login callsign, overrides the config file")
	aprsPasscode = pflag.String("aprsis-passcode", "", "APRS-IS login passcode, overrides the config file")
	aprsReporter = pflag.String("aprsis-reporter", "", "APRS-IS reporting station, overrides the config file")

	version = pflag.Bool("version", false, "Show version information")
)

func main() {
	pflag.Parse()
	verbose.SetEnabled(*verboseFlag)

	if *version {
		fmt.Printf("js8spotd version %s (%s)\n", Version, Build)
		os.Exit(0)
	}

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: js8spotd <record|decode|rebuild-spots|rebuild-alldecodes|rebuild-history> [flags]")
		os.Exit(-1)
	}
	process := pflag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(-1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(-1)
	}
	if *verboseFlag {
		cfg.Logging.Level = "debug"
		cfg.Logging.Console = true
	}

	if err := logging.InitGlobalLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(-1)
	}
	defer logging.CloseGlobalLogger()

	logging.Infof("main", "js8spotd version %s starting, process=%s", Version, process)

	opts, err := buildOptions(cfg, process)
	if err != nil {
		logging.Errorf("main", "invalid options: %v", err)
		os.Exit(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logging.Info("main", "received shutdown signal")
		cancel()
	}()

	if err := control.Dispatch(ctx, cfg, opts); err != nil {
		logging.Errorf("main", "%s failed: %v", process, err)
		os.Exit(-1)
	}

	logging.Infof("main", "%s completed", process)
}

// buildOptions layers the parsed flags over the loaded configuration
// into a control.Options, exactly as the precursor's main.go builds
// its daemon config from cfg plus flag overrides.
func buildOptions(cfg *config.Config, process string) (*control.Options, error) {
	opts := &control.Options{
		Action:    process,
		SubAction: *action,
		PrintOnly: *printOnly,

		DataRoot:  firstNonEmpty(*dataDir, cfg.Paths.DataRoot),
		McastAddr: firstNonEmpty(*mcastAddr, cfg.Recording.McastAddr),

		RecorderBin:    cfg.Paths.RecorderBin,
		DemodulatorBin: cfg.Paths.DemodulatorBin,

		SpotLogPath: cfg.Paths.SpotLog,

		APRSEnabled:   *aprsis || cfg.APRS.Enabled,
		APRSHost:      firstNonEmpty(*aprsHost, cfg.APRS.Host),
		APRSPort:      firstNonZeroInt(*aprsPort, cfg.APRS.Port),
		APRSUser:      firstNonEmpty(*aprsUser, cfg.APRS.User),
		APRSPasscode:  firstNonEmpty(*aprsPasscode, cfg.APRS.Passcode),
		APRSReporter:  firstNonEmpty(*aprsReporter, cfg.APRS.Reporter),
		APRSFramesLog: cfg.APRS.FramesLog,

		Verbose: *verboseFlag,
	}
	_ = mode // reserved: radio mode is fixed to usb by the recorder contract today

	for _, f := range *freqs {
		freq, err := parseFreq(f)
		if err != nil {
			return nil, err
		}
		opts.Freqs = append(opts.Freqs, freq)
	}

	for _, sm := range *submodes {
		submode, err := bandplan.ParseSubmode(sm)
		if err != nil {
			return nil, err
		}
		opts.Submodes = append(opts.Submodes, submode)
	}

	return opts, nil
}

func parseFreq(s string) (int, error) {
	var freq int
	if _, err := fmt.Sscanf(s, "%d", &freq); err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	return freq, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
