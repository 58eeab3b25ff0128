package js8frame

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// filenameRex matches "YYYYMMDDThhmmssZ_<freq_hz>_<usb|lsb>…", the
// naming convention the recorder subprocess uses for its wav output
// and the decoder worker preserves for the matching .decode file.
var filenameRex = regexp.MustCompile(`(\d{8}T\d{6}Z)_(\d{7,})_(usb|lsb)`)

// DecodeFileProcessor drives a Parser over every line of one decode
// file, inferring (record_time, freq_khz, radio_mode) from the
// filename and reconciling them against any values already set on the
// parser.
type DecodeFileProcessor struct {
	Parser *Parser
}

// NewDecodeFileProcessor creates a processor around a fresh Parser.
func NewDecodeFileProcessor() *DecodeFileProcessor {
	return &DecodeFileProcessor{Parser: &Parser{}}
}

// ProcessFilename extracts (recordTime, freqKHz, radioMode) from fn's
// base name and reconciles them with any values already set on the
// processor's Parser, returning an error on mismatch.
func (d *DecodeFileProcessor) ProcessFilename(fn string) error {
	base := filepath.Base(fn)
	m := filenameRex.FindStringSubmatch(base)
	if m == nil {
		return fmt.Errorf("decode filename %q does not match expected pattern", base)
	}

	recordTime, err := time.ParseInLocation("20060102T150405Z", m[1], time.UTC)
	if err != nil {
		return fmt.Errorf("invalid record time in filename %q: %w", base, err)
	}

	var freqHz int
	if _, err := fmt.Sscanf(m[2], "%d", &freqHz); err != nil {
		return fmt.Errorf("invalid frequency in filename %q: %w", base, err)
	}
	freqKHz := freqHz / 1000
	radioMode := m[3]

	if !d.Parser.RecordTime.IsZero() && !d.Parser.RecordTime.Equal(recordTime) {
		return fmt.Errorf("filename record_time %s conflicts with already-set %s", recordTime, d.Parser.RecordTime)
	}
	if d.Parser.FreqKHz != 0 && d.Parser.FreqKHz != freqKHz {
		return fmt.Errorf("filename freq_khz %d conflicts with already-set %d", freqKHz, d.Parser.FreqKHz)
	}
	if d.Parser.RadioMode != "" && d.Parser.RadioMode != radioMode {
		return fmt.Errorf("filename radio_mode %q conflicts with already-set %q", radioMode, d.Parser.RadioMode)
	}

	d.Parser.RecordTime = recordTime
	d.Parser.FreqKHz = freqKHz
	d.Parser.RadioMode = radioMode
	return nil
}

// ProcessFile reads decodeFile line by line through Parser.Parse,
// attaching decode_file to every surviving FrameRecord.
func (d *DecodeFileProcessor) ProcessFile(decodeFile string) ([]*FrameRecord, error) {
	if err := d.ProcessFilename(decodeFile); err != nil {
		return nil, err
	}

	f, err := os.Open(decodeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open decode file %s: %w", decodeFile, err)
	}
	defer f.Close()

	var records []*FrameRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rec, err := d.Parser.Parse(scanner.Text())
		if err != nil {
			return records, err
		}
		if rec == nil {
			continue
		}
		rec.DecodeFile = decodeFile
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read decode file %s: %w", decodeFile, err)
	}

	return records, nil
}
