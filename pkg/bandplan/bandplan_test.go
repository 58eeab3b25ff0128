package bandplan

import "testing"

func TestSubmodeTable(t *testing.T) {
	cases := []struct {
		mode     Submode
		code     string
		duration int
	}{
		{Turbo, "C", 6},
		{Fast, "B", 10},
		{Norm, "A", 15},
		{Slow, "E", 30},
	}

	for _, c := range cases {
		t.Run(string(c.mode), func(t *testing.T) {
			if got := c.mode.Code(); got != c.code {
				t.Errorf("Code() = %q, want %q", got, c.code)
			}
			if got := int(c.mode.Duration().Seconds()); got != c.duration {
				t.Errorf("Duration() = %d, want %d", got, c.duration)
			}
		})
	}
}

func TestParseSubmodeRejectsUnknown(t *testing.T) {
	if _, err := ParseSubmode("ludicrous"); err == nil {
		t.Fatal("expected error for unknown submode")
	}
}

func TestSSRCForDivergesOnBand18104(t *testing.T) {
	ssrc, err := SSRCFor(18104)
	if err != nil {
		t.Fatalf("SSRCFor: %v", err)
	}
	if ssrc != 18106 {
		t.Errorf("SSRCFor(18104) = %d, want 18106 (preserved divergence)", ssrc)
	}
}

func TestSSRCForUnknownFrequency(t *testing.T) {
	if _, err := SSRCFor(99999); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

func TestFreqListAndSSRCAligned(t *testing.T) {
	if len(FreqList) != len(FreqSSRC) {
		t.Fatalf("FreqList and FreqSSRC must be index-aligned: %d vs %d", len(FreqList), len(FreqSSRC))
	}
}

func TestModeConfigDirs(t *testing.T) {
	mc, err := NewModeConfig(7078, Norm, "/data", "239.1.1.1:5004", "/var/log/js8.log")
	if err != nil {
		t.Fatalf("NewModeConfig: %v", err)
	}

	want := "/data/7078000/norm/rec"
	if mc.RecDir != want {
		t.Errorf("RecDir = %q, want %q", mc.RecDir, want)
	}
	if len(mc.Dirs()) != 8 {
		t.Errorf("Dirs() returned %d paths, want 8 (the ninth is the submode root itself, implicit)", len(mc.Dirs()))
	}
}

func TestModeConfigRejectsUnknownFreq(t *testing.T) {
	if _, err := NewModeConfig(1, Norm, "/data", "", ""); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}
