package control

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/fsutil"
	"github.com/dougsko/js8spotd/pkg/js8frame"
	"github.com/dougsko/js8spotd/pkg/reassembler"
)

func testOptions(t *testing.T, root string) *Options {
	t.Helper()
	return &Options{
		DataRoot:    root,
		McastAddr:   "js8-pcm.local",
		SpotLogPath: filepath.Join(root, "js8.log"),
		Freqs:       []int{7078},
		Submodes:    []bandplan.Submode{bandplan.Fast},
	}
}

func writeDecodeLogRecord(t *testing.T, job *bandplan.ModeConfig, r *js8frame.FrameRecord) {
	t.Helper()
	if err := job.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := fsutil.AppendJSON(job.AllParsedDecodesPath(), []map[string]interface{}{r.JSON()}); err != nil {
		t.Fatalf("AppendJSON: %v", err)
	}
}

// TestRebuildSpotsSortsAscendingByRecordTime is scenario S6: two
// records are appended to the decode log with the later record_time
// written first, and rebuild-spots must still emit the earlier one
// first.
func TestRebuildSpotsSortsAscendingByRecordTime(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root)
	job, err := bandplan.NewModeConfig(7078, bandplan.Fast, root, opts.McastAddr, opts.SpotLogPath)
	if err != nil {
		t.Fatalf("NewModeConfig: %v", err)
	}

	later := &js8frame.FrameRecord{
		RecordTime: "2025/10/26 20:00:00", DB: -10, DT: 0.1, JS8Mode: "A",
		Freq: 7078500, Callsign: "VK4TAA", Locator: "QG62", Msg: "HELLO",
		Spot: true, IsValid: true,
	}
	earlier := &js8frame.FrameRecord{
		RecordTime: "2025/10/26 19:00:00", DB: -11, DT: 0.2, JS8Mode: "A",
		Freq: 7078600, Callsign: "VK4TMZ", Locator: "QG62", Msg: "WORLD",
		Spot: true, IsValid: true,
	}

	// The later timestamp is written to the log first, matching the
	// scenario's setup.
	writeDecodeLogRecord(t, job, later)
	writeDecodeLogRecord(t, job, earlier)

	if err := RebuildSpots(opts); err != nil {
		t.Fatalf("RebuildSpots: %v", err)
	}

	data, err := os.ReadFile(opts.SpotLogPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d spot lines, want 2: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "19:00:00") {
		t.Errorf("first line = %q, want the 19:00:00 record first", lines[0])
	}
	if !strings.Contains(lines[1], "20:00:00") {
		t.Errorf("second line = %q, want the 20:00:00 record second", lines[1])
	}
}

func TestRebuildSpotsPrintOnlyLeavesSpotLogUntouched(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root)
	opts.PrintOnly = true
	job, err := bandplan.NewModeConfig(7078, bandplan.Fast, root, opts.McastAddr, opts.SpotLogPath)
	if err != nil {
		t.Fatalf("NewModeConfig: %v", err)
	}
	writeDecodeLogRecord(t, job, &js8frame.FrameRecord{
		RecordTime: "2025/10/26 19:00:00", JS8Mode: "A", Freq: 7078600,
		Callsign: "VK4TMZ", Locator: "QG62", Msg: "HI", Spot: true, IsValid: true,
	})

	if err := RebuildSpots(opts); err != nil {
		t.Fatalf("RebuildSpots: %v", err)
	}

	if _, err := os.Stat(opts.SpotLogPath); !os.IsNotExist(err) {
		t.Error("--print-only must not create or modify the spot log")
	}
}

func TestRebuildRefusesWhileDecoderIsLive(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root)

	if err := writeDecoderPID(decoderPIDPath(root)); err != nil {
		t.Fatalf("writeDecoderPID: %v", err)
	}

	for name, rebuild := range map[string]func(*Options) error{
		"rebuild-spots":      RebuildSpots,
		"rebuild-alldecodes": RebuildAllDecodes,
		"rebuild-history":    RebuildHistory,
	} {
		if err := rebuild(opts); !errors.Is(err, ErrDecoderRunning) {
			t.Errorf("%s = %v, want ErrDecoderRunning", name, err)
		}
	}
}

func TestRebuildAllDecodesPrintOnlyRefusalIsSkipped(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root)
	opts.PrintOnly = true

	if err := writeDecoderPID(decoderPIDPath(root)); err != nil {
		t.Fatalf("writeDecoderPID: %v", err)
	}

	// print-only rebuilds never mutate shared files, so they are exempt
	// from the live-decoder refusal.
	if err := RebuildAllDecodes(opts); err != nil {
		t.Errorf("RebuildAllDecodes with --print-only = %v, want nil", err)
	}
}

// TestRebuildHistoryMatchesLiveReassemblerState is invariant 8: replaying
// the decode log through a fresh Reassembler (APRS dispatch disabled)
// must reproduce the callsign history a live run would have produced
// from the same frames with dispatch disabled.
func TestRebuildHistoryMatchesLiveReassemblerState(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root)
	job, err := bandplan.NewModeConfig(7078, bandplan.Fast, root, opts.McastAddr, opts.SpotLogPath)
	if err != nil {
		t.Fatalf("NewModeConfig: %v", err)
	}

	frame := &js8frame.FrameRecord{
		Timestamp: 1700000000, Class: js8frame.FrameHeartbeat, ThreadType: 3,
		DialFreq: 7078000, Offset: 500, Callsign: "VK4TMZ", Locator: "QG62",
		IsValid: true,
	}
	writeDecodeLogRecord(t, job, frame)

	live := reassembler.New(nil)
	live.Feed(frame)
	liveRecord := live.Callsign("VK4TMZ")
	if liveRecord == nil {
		t.Fatal("expected the live reassembler to record VK4TMZ's history")
	}

	if err := RebuildHistory(opts); err != nil {
		t.Fatalf("RebuildHistory: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "callsign_history.db"))
	if err != nil {
		t.Fatalf("ReadFile callsign_history.db: %v", err)
	}
	var snapshot map[string]map[string]interface{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("Unmarshal callsign_history.db: %v", err)
	}

	rebuilt, ok := snapshot["VK4TMZ"]
	if !ok {
		t.Fatal("callsign_history.db missing VK4TMZ after rebuild")
	}
	liveJSON := liveRecord.JSON()
	if int64(rebuilt["first_ts"].(float64)) != liveJSON["first_ts"].(int64) {
		t.Errorf("rebuilt first_ts = %v, want %v", rebuilt["first_ts"], liveJSON["first_ts"])
	}
	if int64(rebuilt["last_ts"].(float64)) != liveJSON["last_ts"].(int64) {
		t.Errorf("rebuilt last_ts = %v, want %v", rebuilt["last_ts"], liveJSON["last_ts"])
	}
	if int(rebuilt["last_freq"].(float64)) != liveJSON["last_freq"].(int) {
		t.Errorf("rebuilt last_freq = %v, want %v", rebuilt["last_freq"], liveJSON["last_freq"])
	}
}
