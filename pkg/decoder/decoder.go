// Package decoder runs the worker loop that demodulates recorded WAV
// files into JS8 frame records and appends surviving spots to the
// shared spot log (C6).
package decoder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/fsutil"
	"github.com/dougsko/js8spotd/pkg/js8frame"
	"github.com/dougsko/js8spotd/pkg/logging"
	"github.com/dougsko/js8spotd/pkg/reassembler"
	"github.com/dougsko/js8spotd/pkg/verbose"
)

// MinWavAge is how long a WAV file must sit untouched in the rec
// directory before the worker considers it complete and decodes it;
// pcmrecord rotates files roughly every submode duration, so anything
// fresher than this may still be mid-write.
const MinWavAge = 2 * time.Second

// PollInterval is how long the worker sleeps between scans once a
// rec directory has been drained.
const PollInterval = 15 * time.Second

// DecodeDepth is the -d argument passed to the demodulator binary.
const DecodeDepth = 3

var wavPattern = regexp.MustCompile(`\.wav$`)

// Worker runs the decode loop for one (freq, submode) job.
type Worker struct {
	Config *bandplan.ModeConfig
	Bin    string // path to the js8 demodulator binary

	proc  *js8frame.DecodeFileProcessor
	re    *reassembler.Reassembler
	lock  *fsutil.FileLock
}

// NewWorker builds a Worker for cfg, using bin as the demodulator
// binary and acquiring its spot-log lock lazily on first append. re
// may be nil, which disables reassembly and @APRSIS dispatch entirely
// (used by tests that only exercise the subprocess/archival plumbing).
func NewWorker(cfg *bandplan.ModeConfig, bin string, re *reassembler.Reassembler) *Worker {
	return &Worker{
		Config: cfg,
		Bin:    bin,
		proc:   js8frame.NewDecodeFileProcessor(),
		re:     re,
	}
}

// Run loops forever: scan, decode, sleep. It only returns on a
// non-recoverable setup error; per-file failures are logged and
// skipped.
func (w *Worker) Run() error {
	if err := w.Config.Ensure(); err != nil {
		return err
	}

	for {
		if err := w.RunOnce(); err != nil {
			logging.Errorf("decoder", "scan of %s failed: %v", w.Config.RecDir, err)
		}
		time.Sleep(PollInterval)
	}
}

// RunOnce performs a single scan-and-decode pass over the rec
// directory, implementing the 8-step loop: age-filtered wav scan,
// demodulate, route by exit code, parse, append to the all-decodes
// log, batch spots under the shared lock, delete the source wav.
func (w *Worker) RunOnce() error {
	files, err := fsutil.FindAged(w.Config.RecDir, wavPattern, MinWavAge, true)
	if err != nil {
		return err
	}

	for _, name := range files {
		if err := w.processOne(name); err != nil {
			logging.Errorf("decoder", "failed to process %s: %v", name, err)
		}
	}
	return nil
}

func (w *Worker) processOne(wavName string) error {
	srcPath := filepath.Join(w.Config.RecDir, wavName)
	decodeName := wavName + ".decode"
	decodePath := filepath.Join(w.Config.DecodeDir, decodeName)
	errorPath := filepath.Join(w.Config.DecodeErrDir, decodeName+".error")

	retCode, err := w.demodulate(srcPath, decodePath, errorPath)
	if err != nil {
		return fmt.Errorf("failed to run demodulator on %s: %w", srcPath, err)
	}

	if retCode != 0 {
		logging.Errorf("decoder", "demodulator exited %d for %s", retCode, srcPath)
		if err := os.Rename(decodePath, filepath.Join(w.Config.DecodeErrDir, decodeName)); err != nil {
			logging.Warnf("decoder", "failed to move failed decode file %s: %v", decodePath, err)
		}
		return w.deleteWav(srcPath)
	}

	// Success: the stderr sidecar carries nothing worth keeping.
	if err := os.Remove(errorPath); err != nil && !os.IsNotExist(err) {
		logging.Warnf("decoder", "failed to remove empty error file %s: %v", errorPath, err)
	}

	donePath := filepath.Join(w.Config.DecodeDoneDir, decodeName)
	if err := os.Rename(decodePath, donePath); err != nil {
		return fmt.Errorf("failed to move decode file %s to done: %w", decodePath, err)
	}

	// Each decode file carries its own record time in its name, so it
	// gets a fresh processor; a reused one rejects every later file.
	w.proc = js8frame.NewDecodeFileProcessor()
	records, err := w.proc.ProcessFile(donePath)
	if err != nil {
		logging.Errorf("decoder", "failed to parse decode file %s: %v", donePath, err)
	}

	if len(records) > 0 {
		if err := w.appendAllDecodes(records); err != nil {
			logging.Errorf("decoder", "failed to append all-decodes log: %v", err)
		}
		if w.re != nil {
			for _, r := range records {
				w.re.Feed(r)
			}
		}
		if err := w.appendSpots(records); err != nil {
			logging.Errorf("decoder", "failed to append spot log: %v", err)
		}
	}

	return w.deleteWav(srcPath)
}

// demodulate runs the js8 demodulator binary against wavPath, writing
// stdout to decodePath and stderr to errorPath, and returns its exit
// code.
func (w *Worker) demodulate(wavPath, decodePath, errorPath string) (int, error) {
	args := []string{
		"-f", strconv.Itoa(w.Config.FreqHz()),
		"--js8",
		"-b", w.Config.Submode.Code(),
		"-d", strconv.Itoa(DecodeDepth),
		"-a", w.Config.RecDir,
		"-t", w.Config.TmpDir,
		wavPath,
	}

	out, err := os.OpenFile(decodePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return -1, fmt.Errorf("failed to create decode file %s: %w", decodePath, err)
	}
	defer out.Close()

	errOut, err := os.OpenFile(errorPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return -1, fmt.Errorf("failed to create error file %s: %w", errorPath, err)
	}
	defer errOut.Close()

	cmd := exec.Command(w.Bin, args...)
	cmd.Stdout = out
	cmd.Stderr = errOut

	verbose.Printf("decoder: %d kHz %s: running %s %s", w.Config.FreqKHz, w.Config.Submode, w.Bin, strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start demodulator: %w", err)
	}

	err = cmd.Wait()
	if err == nil {
		verbose.Printf("decoder: %d kHz %s: demodulator exited 0", w.Config.FreqKHz, w.Config.Submode)
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		verbose.Printf("decoder: %d kHz %s: demodulator exited %d", w.Config.FreqKHz, w.Config.Submode, exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// deleteWav removes the source wav unconditionally, regardless of
// whether the demodulator succeeded or how many messages it decoded.
func (w *Worker) deleteWav(srcPath string) error {
	if err := os.Remove(srcPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", srcPath, err)
	}
	return nil
}

func (w *Worker) appendAllDecodes(records []*js8frame.FrameRecord) error {
	var rows []map[string]interface{}
	for _, r := range records {
		rows = append(rows, r.JSON())
	}
	return fsutil.AppendJSON(w.Config.AllParsedDecodesPath(), rows)
}

// appendSpots serializes spot-worthy records into the shared spot log
// under an exclusive cross-process lock, since ~40 decoder workers may
// be appending concurrently.
func (w *Worker) appendSpots(records []*js8frame.FrameRecord) error {
	var lines []string
	for _, r := range records {
		if r.Spot && r.IsValid {
			lines = append(lines, js8frame.FormatSpotLine(r)+"\n")
		}
	}
	if len(lines) == 0 {
		return nil
	}

	lock, err := w.spotLock()
	if err != nil {
		return err
	}

	return lock.WithLock(func() error {
		return fsutil.WriteStrings(w.Config.SpotLogPath, lines, true)
	})
}

func (w *Worker) spotLock() (*fsutil.FileLock, error) {
	if w.lock != nil {
		return w.lock, nil
	}
	lock, err := fsutil.NewFileLock(filepath.Join(w.Config.DataRoot, "spot.lock"))
	if err != nil {
		return nil, err
	}
	w.lock = lock
	return lock, nil
}
