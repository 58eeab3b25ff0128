package js8frame

import "fmt"

// FormatSpotLine renders r in the human-readable spot-log line format
// shared by the live decoder worker and the rebuild-spots control
// operation: "{record_time} {db:>5} {dt:>4} {js8mode} {freq_mhz:>9}
// {callsign:>9} {locator:>4} ~ {msg}".
func FormatSpotLine(r *FrameRecord) string {
	freqMHz := float64(r.Freq) / 1_000_000.0
	return fmt.Sprintf("%s %5.0f %4.1f %s %9.6f %9s %4s ~ %s",
		r.RecordTime, r.DB, r.DT, r.JS8Mode, freqMHz, r.Callsign, r.Locator, r.Msg)
}
