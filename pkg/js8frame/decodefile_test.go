package js8frame

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeFileProcessorParsesFilenameAndLines(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "20251026T192630Z_10130000_usb.decode")
	content := "<DecodeStarted>\n1500 -9 0.1 A HB 3 VK4TMZ QG62\n EOF on input file\n"
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDecodeFileProcessor()
	records, err := d.ProcessFile(fn)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].DecodeFile != fn {
		t.Errorf("DecodeFile = %q, want %q", records[0].DecodeFile, fn)
	}
	if records[0].Callsign != "VK4TMZ" {
		t.Errorf("Callsign = %q, want VK4TMZ", records[0].Callsign)
	}
	if d.Parser.FreqKHz != 10130 {
		t.Errorf("FreqKHz = %d, want 10130", d.Parser.FreqKHz)
	}
	if d.Parser.RadioMode != "usb" {
		t.Errorf("RadioMode = %q, want usb", d.Parser.RadioMode)
	}
}

func TestDecodeFileProcessorRejectsMalformedName(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "not-a-decode-file.txt")
	if err := os.WriteFile(fn, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDecodeFileProcessor()
	if _, err := d.ProcessFile(fn); err == nil {
		t.Fatal("expected error for malformed filename")
	}
}

func TestDecodeFileProcessorDetectsMismatch(t *testing.T) {
	d := NewDecodeFileProcessor()
	if err := d.ProcessFilename("20251026T192630Z_10130000_usb.decode"); err != nil {
		t.Fatalf("ProcessFilename: %v", err)
	}
	if err := d.ProcessFilename("20251026T192630Z_7078000_usb.decode"); err == nil {
		t.Fatal("expected mismatch error on conflicting freq")
	}
}
