package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/recorder"
)

func recordOptions(t *testing.T, root string) *Options {
	t.Helper()
	return &Options{
		DataRoot:    root,
		McastAddr:   "js8-pcm.local",
		SpotLogPath: filepath.Join(root, "js8.log"),
		RecorderBin: "/bin/sleep",
		Freqs:       []int{7078},
		Submodes:    []bandplan.Submode{bandplan.Fast},
	}
}

func TestStartRecordersWritesPIDFileAndStatusReportsIt(t *testing.T) {
	root := t.TempDir()
	opts := recordOptions(t, root)

	if err := StartRecorders(opts); err != nil {
		t.Fatalf("StartRecorders: %v", err)
	}

	recs, err := RecorderStatus(opts)
	if err != nil {
		t.Fatalf("RecorderStatus: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recorder records, want 1", len(recs))
	}
	if recs[0].FreqKHz != 7078 || recs[0].Submode != "fast" {
		t.Errorf("record = %+v, unexpected fields", recs[0])
	}

	time.Sleep(50 * time.Millisecond)
}

func TestStopRecordersArchivesPIDFile(t *testing.T) {
	root := t.TempDir()
	opts := recordOptions(t, root)

	if err := StartRecorders(opts); err != nil {
		t.Fatalf("StartRecorders: %v", err)
	}
	if err := StopRecorders(opts); err != nil {
		t.Fatalf("StopRecorders: %v", err)
	}

	if _, err := os.Stat(recorderPIDPath(root)); !os.IsNotExist(err) {
		t.Error("expected the pid file to be archived away after StopRecorders")
	}
}

func TestStopRecordersWithNoneRunningReturnsErrNotRunning(t *testing.T) {
	root := t.TempDir()
	opts := recordOptions(t, root)

	if err := StopRecorders(opts); !errors.Is(err, recorder.ErrNotRunning) {
		t.Fatalf("StopRecorders = %v, want recorder.ErrNotRunning when nothing is tracked", err)
	}
}
