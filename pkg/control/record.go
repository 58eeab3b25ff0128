package control

import (
	"path/filepath"

	"github.com/dougsko/js8spotd/pkg/recorder"
)

// recorderPIDPath is the shared pcmrecord.pids table, one row per
// running recorder subprocess.
func recorderPIDPath(dataRoot string) string {
	return filepath.Join(dataRoot, "pcmrecord.pids")
}

// StartRecorders spawns one detached pcmrecord subprocess per job and
// persists their PIDs; it refuses over an already-populated PID file.
func StartRecorders(opts *Options) error {
	jobs, err := opts.Jobs()
	if err != nil {
		return err
	}
	mgr := recorder.NewManager(opts.RecorderBin, recorderPIDPath(opts.DataRoot), jobs)
	return mgr.Start()
}

// StopRecorders signals SIGTERM to every tracked recorder and archives
// the PID file.
func StopRecorders(opts *Options) error {
	mgr := recorder.NewManager(opts.RecorderBin, recorderPIDPath(opts.DataRoot), nil)
	return mgr.Stop()
}

// RecorderStatus returns the recorders currently tracked in the PID
// file.
func RecorderStatus(opts *Options) ([]recorder.PIDRecord, error) {
	mgr := recorder.NewManager(opts.RecorderBin, recorderPIDPath(opts.DataRoot), nil)
	return mgr.Status()
}
