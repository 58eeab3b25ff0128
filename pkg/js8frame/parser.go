package js8frame

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dougsko/js8spotd/pkg/logging"
)

var ignorableMarker = regexp.MustCompile(` ?<Decode(Started|Debug|Finished)>`)

const eofMarker = " EOF on input file"

// Parser converts raw demodulator output lines into FrameRecords.
// A Parser instance is configured once per decode file: FreqKHz and
// RecordTime must be set before Parse is called; RadioMode is carried
// along but Parse does not check it.
type Parser struct {
	FreqKHz    int
	RadioMode  string // "usb" or "lsb"
	RecordTime time.Time
}

// Parse implements C3: it strips ignorable markers, requires freqKHz
// and recordTime to be set, delegates to decodeLine, then validates
// and flags the resulting FrameRecord. It returns (nil, nil) for lines
// that carry no frame (noise markers), and a non-nil error only for
// hard configuration failures.
func (p *Parser) Parse(rawLine string) (*FrameRecord, error) {
	line := strings.TrimRight(rawLine, " \t\r\n")

	if ignorableMarker.MatchString(line) {
		return nil, nil
	}
	if strings.HasPrefix(line, eofMarker) {
		return nil, nil
	}
	if line == "" {
		return nil, nil
	}

	if p.FreqKHz == 0 {
		return nil, fmt.Errorf("js8frame: freq_khz must be set before parsing")
	}
	if p.RecordTime.IsZero() {
		return nil, fmt.Errorf("js8frame: record_time must be set before parsing")
	}

	d, err := decodeLine(line)
	if err != nil {
		logging.Warnf("parser", "dropping unparseable decode line: %v", err)
		return nil, nil
	}

	rec := &FrameRecord{
		Timestamp:  p.RecordTime.Unix(),
		RecordTime: p.RecordTime.UTC().Format("2006/01/02 15:04:05"),
		Mode:       "JS8",
		JS8Mode:    d.js8mode,
		Class:      d.class,
		ThreadType: d.threadType,
		DialFreq:   p.FreqKHz * 1000,
		Offset:     d.offset,
		Callsign:   d.callsign,
		CallsignTo: d.callsignTo,
		Locator:    d.grid,
		Cmd:        d.cmd,
		Msg:        d.msg,
		RawMsg:     rawLine,
		DB:         d.db,
		DT:         d.dt,
		SNR:        d.db,
	}
	rec.Freq = rec.DialFreq + rec.Offset

	rec.Spot = (rec.Class == FrameHeartbeat || rec.Class == FrameCompound) && rec.Locator != ""

	p.validate(rec)
	rec.IsValid = rec.ValidationMsg == ""
	if !rec.IsValid {
		rec.Spot = false
	}

	return rec, nil
}

// validate implements the per-class validation table from §4.1,
// skipped entirely for frequencies on the ignore list.
func (p *Parser) validate(rec *FrameRecord) {
	if ShouldSkipValidation(p.FreqKHz) {
		return
	}

	switch rec.Class {
	case FrameHeartbeat:
		if !IsValidCallsign(rec.Callsign) {
			rec.ValidationMsg = fmt.Sprintf("invalid heartbeat callsign %q", rec.Callsign)
			return
		}
		if !IsValidGrid4(rec.Locator) {
			rec.ValidationMsg = fmt.Sprintf("invalid heartbeat grid %q", rec.Locator)
			return
		}
	case FrameDirected:
		if !IsValidCallsign(rec.Callsign) {
			rec.ValidationMsg = fmt.Sprintf("invalid directed callsign %q", rec.Callsign)
			return
		}
		if !IsValidCallsign(rec.CallsignTo) && !IsValidGroupCallsign(rec.CallsignTo) {
			rec.ValidationMsg = fmt.Sprintf("invalid directed callsign_to %q", rec.CallsignTo)
			return
		}
	case FrameCompound, FrameCompoundDirected:
		if !IsValidCallsign(rec.Callsign) && !IsValidGroupCallsign(rec.Callsign) {
			rec.ValidationMsg = fmt.Sprintf("invalid compound callsign %q", rec.Callsign)
			return
		}
	case FrameData, FrameDataCompressed:
		// no validation imposed
	default:
		rec.ValidationMsg = "Unknown/Unhandled frame class"
	}
}
