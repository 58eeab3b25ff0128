// Package recorder spawns and supervises the pcmrecord subprocesses
// that capture one multicast PCM stream per frequency/submode pair
// into rotating WAV files (C5).
package recorder

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/logging"
	"github.com/dougsko/js8spotd/pkg/verbose"
)

// ErrAlreadyRunning is returned by Start when the PID file already
// lists active recorders.
var ErrAlreadyRunning = errors.New("recorder: already running")

// ErrNotRunning is returned by Stop when the PID file is empty or
// absent.
var ErrNotRunning = errors.New("recorder: not running")

// Manager supervises the set of pcmrecord subprocesses for a batch of
// frequency/submode jobs sharing one PID file.
type Manager struct {
	Bin     string // path to the pcmrecord binary
	PIDFile string
	Jobs    []*bandplan.ModeConfig
}

// NewManager builds a Manager over jobs, persisting PIDs at pidFile.
func NewManager(bin, pidFile string, jobs []*bandplan.ModeConfig) *Manager {
	return &Manager{Bin: bin, PIDFile: pidFile, Jobs: jobs}
}

// Start launches one pcmrecord process per job and persists their PIDs.
// It refuses to run over an already-populated PID file.
func (m *Manager) Start() error {
	existing, err := LoadPIDs(m.PIDFile)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %d recorder(s) already tracked in %s", ErrAlreadyRunning, len(existing), m.PIDFile)
	}

	var recs []PIDRecord
	for _, job := range m.Jobs {
		rec, err := m.startOne(job)
		if err != nil {
			logging.Errorf("recorder", "failed to start recorder for %d kHz %s: %v", job.FreqKHz, job.Submode, err)
			recs = append(recs, rec) // rec.PID == 0 marks the failure
			continue
		}
		recs = append(recs, rec)
	}

	return SavePIDs(m.PIDFile, recs)
}

// startOne spawns a single pcmrecord process for job, detached into its
// own session so it survives the parent exiting, with stdout/stderr
// redirected to pcmrecord.log under the job's data directory.
func (m *Manager) startOne(job *bandplan.ModeConfig) (PIDRecord, error) {
	now := time.Now().UTC()
	durationSecs := int(job.Submode.Duration() / time.Second)
	rec := PIDRecord{
		FreqKHz:   job.FreqKHz,
		FreqHz:    job.FreqKHz * 1000,
		Submode:   string(job.Submode),
		Duration:  durationSecs,
		McastAddr: job.McastAddr,
		Timestamp: now.Unix(),
	}

	if err := job.Ensure(); err != nil {
		return rec, err
	}

	ssrc, err := bandplan.SSRCFor(job.FreqKHz)
	if err != nil {
		return rec, err
	}

	args := []string{
		"-L", strconv.Itoa(durationSecs),
		"-d", job.RecDir,
		"-W",
		"-S", strconv.Itoa(ssrc),
		"--jt", job.McastAddr,
	}

	logPath := filepath.Join(job.DataDir, "pcmrecord.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return rec, fmt.Errorf("failed to open %s: %w", logPath, err)
	}
	defer logFile.Close()

	cmd := exec.Command(m.Bin, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	logging.Infof("recorder", "starting pcmrecord for freq %d kHz submode %s: %s %v", job.FreqKHz, job.Submode, m.Bin, args)
	verbose.Printf("recorder: %d kHz %s: log %s, ssrc %d", job.FreqKHz, job.Submode, logPath, ssrc)

	if err := cmd.Start(); err != nil {
		return rec, fmt.Errorf("failed to start pcmrecord for %d kHz %s: %w", job.FreqKHz, job.Submode, err)
	}

	rec.PID = cmd.Process.Pid
	verbose.Printf("recorder: %d kHz %s: started pid %d", job.FreqKHz, job.Submode, rec.PID)

	// pcmrecord runs until stopped; release it so the parent doesn't
	// block on Wait and doesn't leave a zombie once it exits.
	go func() {
		_ = cmd.Wait()
	}()

	return rec, nil
}

// Stop sends SIGTERM to every recorder tracked in the PID file, then
// archives the file.
func (m *Manager) Stop() error {
	recs, err := LoadPIDs(m.PIDFile)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return ErrNotRunning
	}

	for _, rec := range recs {
		if rec.PID == 0 {
			continue
		}
		logging.Infof("recorder", "stopping pcmrecord PID %d (freq %d kHz submode %s)", rec.PID, rec.FreqKHz, rec.Submode)
		proc, err := os.FindProcess(rec.PID)
		if err != nil {
			logging.Warnf("recorder", "process %d not found: %v", rec.PID, err)
			continue
		}
		if err := proc.Signal(syscall.SIGTERM); err != nil {
			logging.Warnf("recorder", "failed to signal PID %d: %v", rec.PID, err)
		}
	}

	return ArchivePIDFile(m.PIDFile)
}

// Status returns the recorders currently tracked in the PID file
// without taking any action.
func (m *Manager) Status() ([]PIDRecord, error) {
	recs, err := LoadPIDs(m.PIDFile)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotRunning
	}
	return recs, nil
}

// ArchivePIDFile renames the PID file to a timestamp-suffixed name
// alongside itself, mirroring the archival behavior used for decode
// and spot logs.
func ArchivePIDFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	suffix := time.Now().UTC().Format("20060102_150405.000")
	return os.Rename(path, fmt.Sprintf("%s.%s", path, suffix))
}
