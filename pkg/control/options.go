package control

import (
	"fmt"

	"github.com/dougsko/js8spotd/pkg/bandplan"
)

// Options is the fully-resolved set of inputs to Dispatch, built by
// cmd/js8spotd/main.go from pflag values layered over the loaded
// config.Config.
type Options struct {
	Action     string // record, decode, rebuild-spots, rebuild-alldecodes, rebuild-history
	SubAction  string // start, stop, status (only meaningful for record/decode)
	PrintOnly  bool

	Freqs    []int             // -f/--freq, may repeat; empty means "all known bands"
	Submodes []bandplan.Submode // --sub-mode, may repeat; empty means "all four"

	DataRoot  string
	McastAddr string

	RecorderBin    string
	DemodulatorBin string

	SpotLogPath string

	APRSEnabled  bool
	APRSHost     string
	APRSPort     int
	APRSUser     string
	APRSPasscode string
	APRSReporter string
	APRSFramesLog string

	Verbose bool
}

// Jobs expands Freqs x Submodes into the ModeConfig set this
// invocation operates over, defaulting to every band and every
// submode when either list is empty.
func (o *Options) Jobs() ([]*bandplan.ModeConfig, error) {
	freqs := o.Freqs
	if len(freqs) == 0 {
		freqs = bandplan.FreqList
	}
	submodes := o.Submodes
	if len(submodes) == 0 {
		submodes = bandplan.Submodes
	}

	var jobs []*bandplan.ModeConfig
	for _, freq := range freqs {
		if !bandplan.ValidFreq(freq) {
			return nil, fmt.Errorf("%w: %d kHz", ErrUnknownFrequency, freq)
		}
		for _, sm := range submodes {
			if !sm.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownSubmode, sm)
			}
			cfg, err := bandplan.NewModeConfig(freq, sm, o.DataRoot, o.McastAddr, o.SpotLogPath)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, cfg)
		}
	}
	return jobs, nil
}
