package recorder

import (
	"path/filepath"
	"testing"
)

func TestLoadPIDsMissingFileReturnsEmpty(t *testing.T) {
	recs, err := LoadPIDs(filepath.Join(t.TempDir(), "missing.pids"))
	if err != nil {
		t.Fatalf("LoadPIDs: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

func TestSavePIDsAndLoadPIDsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcmrecord.pids")
	ret := 0
	want := []PIDRecord{
		{FreqKHz: 7078, FreqHz: 7078000, Submode: "fast", Duration: 10, McastAddr: "js8-pcm.local", PID: 4242, Timestamp: 1700000000, RetCode: nil},
		{FreqKHz: 14078, FreqHz: 14078000, Submode: "norm", Duration: 15, McastAddr: "js8-pcm.local", PID: 0, Timestamp: 1700000001, RetCode: &ret},
	}

	if err := SavePIDs(path, want); err != nil {
		t.Fatalf("SavePIDs: %v", err)
	}

	got, err := LoadPIDs(path)
	if err != nil {
		t.Fatalf("LoadPIDs: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i].FreqKHz != want[i].FreqKHz || got[i].PID != want[i].PID || got[i].Submode != want[i].Submode {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[1].RetCode == nil || *got[1].RetCode != 0 {
		t.Errorf("record 1 ret_code = %v, want pointer to 0", got[1].RetCode)
	}
	if got[0].RetCode != nil {
		t.Errorf("record 0 ret_code = %v, want nil (None)", got[0].RetCode)
	}
}

func TestParsePIDLineRejectsWrongFieldCount(t *testing.T) {
	if _, err := parsePIDLine("7078,7078000,fast"); err == nil {
		t.Fatal("expected an error for a short pid record")
	}
}
