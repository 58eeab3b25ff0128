package control

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// decoderPIDPath returns the path to the control process's own PID
// file, directly under the data root that holds the per-(freq,submode)
// ModeConfig directories.
func decoderPIDPath(dataRoot string) string {
	return dataRoot + "/js8decoder.pid"
}

// writeDecoderPID writes "pid,timestamp" to path, refusing if an
// existing file names a still-running process. Mirrors the
// precursor's createPidFile/checkExistingPid/isProcessRunning chain,
// generalized to the control process's own lifecycle rather than a
// single daemon's.
func writeDecoderPID(path string) error {
	if running, pid, err := decoderPIDRunning(path); err != nil {
		return err
	} else if running {
		return fmt.Errorf("%w: decoder PID %d is tracked in %s", ErrAlreadyRunning, pid, path)
	}

	line := fmt.Sprintf("%d,%d\n", os.Getpid(), time.Now().UTC().Unix())
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		return fmt.Errorf("failed to write decoder PID file %s: %w", path, err)
	}
	return nil
}

// decoderPIDRunning reports whether path names a decoder PID file
// whose process is currently alive. A missing file, or one naming a
// dead process, is not an error and reports not-running; a stale file
// is left in place for the caller to decide whether to remove it.
func decoderPIDRunning(path string) (bool, int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read decoder PID file %s: %w", path, err)
	}

	fields := strings.Split(strings.TrimSpace(string(data)), ",")
	if len(fields) != 2 {
		return false, 0, nil
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return false, 0, nil
	}

	return isProcessRunning(pid), pid, nil
}

// isProcessRunning probes for a live process with signal 0, exactly as
// the precursor's cmd/js8d/main.go does.
func isProcessRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// readDecoderPID returns the tracked PID, or ErrNotRunning if the file
// is absent/empty/unparseable.
func readDecoderPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read decoder PID file %s: %w", path, err)
	}
	fields := strings.Split(strings.TrimSpace(string(data)), ",")
	if len(fields) != 2 {
		return 0, ErrNotRunning
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, ErrNotRunning
	}
	return pid, nil
}

// removeDecoderPID archives the PID file with a datetime suffix,
// matching the archival convention used for the recorder's PID file
// and the decode/spot logs rather than deleting it outright.
func removeDecoderPID(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	suffix := time.Now().UTC().Format("20060102_150405.000")
	return os.Rename(path, fmt.Sprintf("%s.%s", path, suffix))
}

// decoderIsLive is the refusal guard rebuild actions call before
// mutating any shared file: it must not run concurrently with a live
// decoder.
func decoderIsLive(dataRoot string) (bool, error) {
	running, _, err := decoderPIDRunning(decoderPIDPath(dataRoot))
	return running, err
}
