package control

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/dougsko/js8spotd/pkg/aprs"
	"github.com/dougsko/js8spotd/pkg/decoder"
	"github.com/dougsko/js8spotd/pkg/logging"
	"github.com/dougsko/js8spotd/pkg/reassembler"
)

// buildReporter constructs the shared APRS reporter for this
// invocation, or nil when --aprsis was not requested. The Reporter is
// immutable after construction and safe to share across every
// decoder worker's confined Reassembler.
func buildReporter(opts *Options) (*aprs.Reporter, error) {
	if !opts.APRSEnabled {
		return nil, nil
	}
	if opts.APRSUser == "" || opts.APRSPasscode == "" || opts.APRSReporter == "" {
		return nil, ErrMissingAPRSCredentials
	}
	return aprs.NewReporter(opts.APRSReporter, opts.APRSUser, opts.APRSPasscode, true,
		opts.APRSHost, opts.APRSPort, opts.APRSFramesLog), nil
}

// StartDecoders writes the control process's own PID file, then
// launches one long-lived decoder.Worker goroutine per (freq,
// submode) job, each with its own confined Reassembler. It blocks
// until ctx is cancelled (SIGTERM) and then archives the PID file;
// per §5 there is no graceful drain, so in-flight workers are simply
// abandoned when this function returns and the process exits.
func StartDecoders(ctx context.Context, opts *Options) error {
	path := decoderPIDPath(opts.DataRoot)
	if err := writeDecoderPID(path); err != nil {
		return err
	}

	jobs, err := opts.Jobs()
	if err != nil {
		return err
	}

	reporter, err := buildReporter(opts)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := job.Ensure(); err != nil {
			return fmt.Errorf("failed to prepare directories for %d kHz %s: %w", job.FreqKHz, job.Submode, err)
		}

		re := reassembler.New(reporter)
		w := decoder.NewWorker(job, opts.DemodulatorBin, re)

		logging.Infof("control", "starting decoder worker for %d kHz %s", job.FreqKHz, job.Submode)
		go func(w *decoder.Worker, freqKHz int, sub string) {
			if err := w.Run(); err != nil {
				logging.Errorf("control", "decoder worker for %d kHz %s exited: %v", freqKHz, sub, err)
			}
		}(w, job.FreqKHz, string(job.Submode))
	}

	logging.Infof("control", "decoder started, %d worker(s), PID %d, PID file %s", len(jobs), os.Getpid(), path)

	<-ctx.Done()

	logging.Info("control", "decoder received shutdown signal, stopping without draining in-flight work")
	return removeDecoderPID(path)
}

// StopDecoders signals SIGTERM to the tracked decoder process. The
// signaled process is responsible for archiving its own PID file as
// part of StartDecoders returning.
func StopDecoders(opts *Options) error {
	pid, err := readDecoderPID(decoderPIDPath(opts.DataRoot))
	if err != nil {
		return err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find decoder process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal decoder process %d: %w", pid, err)
	}
	return nil
}

// DecoderStatus returns the PID tracked in the decoder PID file, or
// ErrNotRunning if none is tracked.
func DecoderStatus(opts *Options) (int, error) {
	return readDecoderPID(decoderPIDPath(opts.DataRoot))
}
