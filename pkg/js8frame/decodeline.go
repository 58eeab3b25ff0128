package js8frame

import (
	"fmt"
	"strconv"
	"strings"
)

// decodedLine is the structured result handed back by decodeLine,
// standing in for the typed frame object the out-of-scope third-party
// JS8 frame library would otherwise produce.
type decodedLine struct {
	offset     int
	db         float64
	dt         float64
	js8mode    string
	class      FrameClass
	threadType int
	callsign   string
	callsignTo string
	grid       string
	cmd        string
	msg        string
}

var classTags = map[string]FrameClass{
	"HB":   FrameHeartbeat,
	"CMP":  FrameCompound,
	"CMPD": FrameCompoundDirected,
	"DIR":  FrameDirected,
	"DATA": FrameData,
	"DATC": FrameDataCompressed,
}

// decodeLine tokenizes one line of demodulator stdout:
//
//	<offsetHz> <db> <dt> <js8mode> <classTag> <threadType> <rest...>
//
// rest is class-dependent: HB/CMP carry "<callsign> <grid>", DIR
// carries "<callsign> <callsign_to> <cmd> <msg...>", and
// CMPD/Data/DataCompressed carry "<callsign> <msg...>".
func decodeLine(line string) (*decodedLine, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return nil, fmt.Errorf("malformed decoder line: %q", line)
	}

	offset, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("malformed offset in line %q: %w", line, err)
	}
	db, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, fmt.Errorf("malformed db in line %q: %w", line, err)
	}
	dt, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("malformed dt in line %q: %w", line, err)
	}
	js8mode := fields[3]

	class, ok := classTags[fields[4]]
	if !ok {
		return nil, fmt.Errorf("unknown frame class tag %q in line %q", fields[4], line)
	}

	threadType, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, fmt.Errorf("malformed thread type in line %q: %w", line, err)
	}

	rest := fields[6:]
	d := &decodedLine{
		offset:     offset,
		db:         db,
		dt:         dt,
		js8mode:    js8mode,
		class:      class,
		threadType: threadType,
	}

	switch class {
	case FrameHeartbeat, FrameCompound:
		if len(rest) >= 1 {
			d.callsign = rest[0]
		}
		if len(rest) >= 2 && rest[1] != "-" {
			d.grid = rest[1]
		}
	case FrameDirected:
		if len(rest) >= 1 {
			d.callsign = rest[0]
		}
		if len(rest) >= 2 {
			d.callsignTo = rest[1]
		}
		if len(rest) >= 3 {
			d.cmd = rest[2]
		}
		if len(rest) >= 4 {
			d.msg = strings.Join(rest[3:], " ")
		}
	default: // CompoundDirected, Data, DataCompressed
		if len(rest) >= 1 {
			d.callsign = rest[0]
		}
		if len(rest) >= 2 {
			d.msg = strings.Join(rest[1:], " ")
		}
	}

	return d, nil
}
