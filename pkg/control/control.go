// Package control implements the ControlPlane (C9): command dispatch
// for record/decode start|stop|status and the three rebuild actions,
// fanned out across every requested (freq, submode) pair.
package control

import (
	"context"
	"fmt"

	"github.com/dougsko/js8spotd/pkg/config"
	"github.com/dougsko/js8spotd/pkg/logging"
)

// Dispatch routes opts.Action (and, for record/decode, opts.SubAction)
// to the matching control function. cfg is accepted for parity with
// the precursor's "load config, then dispatch" shape and is logged for
// context; every value Dispatch actually needs has already been
// folded into opts by the caller.
func Dispatch(ctx context.Context, cfg *config.Config, opts *Options) error {
	logging.Infof("control", "dispatching action=%s sub_action=%s station=%s", opts.Action, opts.SubAction, cfg.Station.Callsign)

	switch opts.Action {
	case "record":
		return dispatchRecord(opts)
	case "decode":
		return dispatchDecode(ctx, opts)
	case "rebuild-spots":
		return RebuildSpots(opts)
	case "rebuild-alldecodes":
		return RebuildAllDecodes(opts)
	case "rebuild-history":
		return RebuildHistory(opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, opts.Action)
	}
}

func dispatchRecord(opts *Options) error {
	switch opts.SubAction {
	case "start":
		return StartRecorders(opts)
	case "stop":
		return StopRecorders(opts)
	case "status", "":
		recs, err := RecorderStatus(opts)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			logging.Infof("control", "recorder: %d kHz %s pid=%d", rec.FreqKHz, rec.Submode, rec.PID)
		}
		return nil
	default:
		return fmt.Errorf("%w: record sub-action %q", ErrUnknownAction, opts.SubAction)
	}
}

func dispatchDecode(ctx context.Context, opts *Options) error {
	switch opts.SubAction {
	case "start":
		return StartDecoders(ctx, opts)
	case "stop":
		return StopDecoders(opts)
	case "status", "":
		pid, err := DecoderStatus(opts)
		if err != nil {
			return err
		}
		logging.Infof("control", "decoder: pid=%d", pid)
		return nil
	default:
		return fmt.Errorf("%w: decode sub-action %q", ErrUnknownAction, opts.SubAction)
	}
}
