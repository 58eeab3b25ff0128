// Package js8frame turns one line of JS8 demodulator output into a
// structured, validated FrameRecord (C3), and drives that conversion
// over an entire decode file (C4).
package js8frame

// FrameClass identifies the structural class of a decoded JS8 frame.
// The names and ordering follow the demodulator's own frame-type
// numbering (Heartbeat=0, Compound=1, CompoundDirected=2, Directed=3,
// Data=4, DataCompressed=6), but the Go values do not equal those
// numbers: FrameUnknown takes 0 and the rest follow from 1.
type FrameClass uint8

const (
	FrameUnknown FrameClass = iota
	FrameHeartbeat
	FrameCompound
	FrameCompoundDirected
	FrameDirected
	FrameData
	FrameDataCompressed
)

var frameClassNames = map[FrameClass]string{
	FrameUnknown:          "Unknown",
	FrameHeartbeat:        "Heartbeat",
	FrameCompound:         "Compound",
	FrameCompoundDirected: "CompoundDirected",
	FrameDirected:         "Directed",
	FrameData:             "Data",
	FrameDataCompressed:   "DataCompressed",
}

func (c FrameClass) String() string {
	if s, ok := frameClassNames[c]; ok {
		return s
	}
	return "Unknown"
}

// FrameRecord is the flat result of parsing one decoder output line.
type FrameRecord struct {
	Timestamp  int64  // unix seconds
	RecordTime string // "YYYY/MM/DD HH:MM:SS" UTC

	Mode       string // always "JS8"
	JS8Mode    string // submode code letter reported by the demodulator
	Class      FrameClass
	ThreadType int

	DialFreq int // Hz
	Offset   int // Hz, audio offset
	Freq     int // Hz, DialFreq + Offset

	Callsign   string
	CallsignTo string
	Locator    string
	Cmd        string
	Msg        string
	RawMsg     string

	DB  float64
	DT  float64
	SNR float64

	Spot          bool
	IsValid       bool
	ValidationMsg string

	DecodeFile string
}

// JSON renders the record as the flat map that fsutil.AppendJSON /
// LoadJSON persist, matching the field names of the original decode
// log format.
func (r *FrameRecord) JSON() map[string]interface{} {
	return map[string]interface{}{
		"timestamp":      r.Timestamp,
		"record_time":    r.RecordTime,
		"mode":           r.Mode,
		"js8mode":        r.JS8Mode,
		"frame_class":    r.Class.String(),
		"thread_type":    r.ThreadType,
		"dial_freq":      r.DialFreq,
		"offset":         r.Offset,
		"freq":           r.Freq,
		"callsign":       r.Callsign,
		"callsign_to":    r.CallsignTo,
		"locator":        r.Locator,
		"cmd":            r.Cmd,
		"msg":            r.Msg,
		"raw_msg":        r.RawMsg,
		"db":             r.DB,
		"dt":             r.DT,
		"snr":            r.SNR,
		"spot":           r.Spot,
		"is_valid":       r.IsValid,
		"validation_msg": r.ValidationMsg,
		"decode_file":    r.DecodeFile,
	}
}

// classFromName reverses FrameClass.String(), for reconstructing
// records loaded back out of JSON.
func classFromName(name string) FrameClass {
	for c, n := range frameClassNames {
		if n == name {
			return c
		}
	}
	return FrameUnknown
}

func mapString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapInt64(m map[string]interface{}, key string) int64 {
	if v, ok := m[key].(float64); ok {
		return int64(v)
	}
	return 0
}

func mapInt(m map[string]interface{}, key string) int {
	return int(mapInt64(m, key))
}

func mapFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func mapBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// FromJSON reconstructs a FrameRecord from the flat map produced by
// JSON(), the form persisted in all_parsed_decodes.txt. Used by the
// rebuild-spots/rebuild-history replay paths, which read that log back
// in rather than re-invoking the demodulator.
func FromJSON(m map[string]interface{}) *FrameRecord {
	return &FrameRecord{
		Timestamp:     mapInt64(m, "timestamp"),
		RecordTime:    mapString(m, "record_time"),
		Mode:          mapString(m, "mode"),
		JS8Mode:       mapString(m, "js8mode"),
		Class:         classFromName(mapString(m, "frame_class")),
		ThreadType:    mapInt(m, "thread_type"),
		DialFreq:      mapInt(m, "dial_freq"),
		Offset:        mapInt(m, "offset"),
		Freq:          mapInt(m, "freq"),
		Callsign:      mapString(m, "callsign"),
		CallsignTo:    mapString(m, "callsign_to"),
		Locator:       mapString(m, "locator"),
		Cmd:           mapString(m, "cmd"),
		Msg:           mapString(m, "msg"),
		RawMsg:        mapString(m, "raw_msg"),
		DB:            mapFloat(m, "db"),
		DT:            mapFloat(m, "dt"),
		SNR:           mapFloat(m, "snr"),
		Spot:          mapBool(m, "spot"),
		IsValid:       mapBool(m, "is_valid"),
		ValidationMsg: mapString(m, "validation_msg"),
		DecodeFile:    mapString(m, "decode_file"),
	}
}
