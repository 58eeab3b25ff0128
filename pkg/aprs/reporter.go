// Package aprs formats and delivers APRS-IS position and message
// frames derived from completed JS8 transmissions (C8).
package aprs

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/dougsko/js8spotd/pkg/fsutil"
	"github.com/dougsko/js8spotd/pkg/logging"
)

var callsignSuffixRex = regexp.MustCompile(`^(?:[\dA-Z]{0,3}/)?([\dA-Z]+)(?:/[\dA-Z]+)?$`)

// Reporter delivers formatted APRS frames to an APRS-IS server. Every
// send opens a fresh TCP session, logs in, writes the one frame, and
// closes — no persistent connection is kept.
type Reporter struct {
	Reporter string // the station relaying these spots, e.g. "VK4TMZ"
	Host     string
	Port     int
	User     string
	Passcode string
	Enabled  bool
	FramesLog string

	dialTimeout time.Duration
}

// NewReporter builds a Reporter. Host defaults to asia.aprs2.net:14580
// when left empty/zero, matching the default APRS-IS gateway.
func NewReporter(reporter, user, passcode string, enabled bool, host string, port int, framesLog string) *Reporter {
	if host == "" {
		host = "asia.aprs2.net"
	}
	if port == 0 {
		port = 14580
	}
	if framesLog == "" {
		framesLog = "./aprsis_frames.log"
	}
	return &Reporter{
		Reporter:    strings.ToUpper(reporter),
		Host:        host,
		Port:        port,
		User:        user,
		Passcode:    passcode,
		Enabled:     enabled,
		FramesLog:   framesLog,
		dialTimeout: 10 * time.Second,
	}
}

// removeCallsignSuffix strips any SSID/prefix decoration, keeping the
// base callsign, e.g. "VK4TAA/MM" -> "VK4TAA".
func removeCallsignSuffix(callsign string) string {
	m := callsignSuffixRex.FindStringSubmatch(callsign)
	if m == nil {
		return callsign
	}
	return m[1]
}

// ReportPosition formats and sends an APRS position frame for
// callsign at grid, with the given free-text comment.
func (r *Reporter) ReportPosition(callsign, grid, comment string) error {
	lat, lon, err := GridToAPRS(grid)
	if err != nil {
		return fmt.Errorf("aprs: bad grid %q: %w", grid, err)
	}
	msg := fmt.Sprintf("=%s/%sG#%s", lat, lon, comment)
	return r.ReportMessage(callsign, msg)
}

// ReportMessage formats an APRS frame from callsign+msg and sends it.
func (r *Reporter) ReportMessage(callsign, msg string) error {
	base := strings.ToUpper(removeCallsignSuffix(callsign))
	frame := fmt.Sprintf("%s>%s:%s", base, r.destRoute(), msg)

	if err := validateFrame(frame); err != nil {
		logging.Errorf("aprs", "error parsing APRS packet msg:[%s]. %v", frame, err)
		return nil
	}

	return r.sendFrame(frame)
}

func (r *Reporter) destRoute() string {
	return fmt.Sprintf("APJ8CL,qAS,%s", r.Reporter)
}

// validateFrame does a light sanity check on the frame shape
// (SRC>DEST,PATH:BODY) analogous to the APRS-IS parsing library the
// original implementation validates against before sending.
func validateFrame(frame string) error {
	if !strings.Contains(frame, ">") || !strings.Contains(frame, ":") {
		return fmt.Errorf("malformed APRS frame %q", frame)
	}
	return nil
}

// sendFrame logs the frame to the frames log, then opens a TCP
// session to the APRS-IS server, logs in, writes the frame, and
// closes.
func (r *Reporter) sendFrame(frame string) error {
	logging.Infof("aprs", "APRS Frame: [%s] - APRS Reporting Enabled: [%t]", frame, r.Enabled)

	if !r.Enabled {
		return nil
	}

	ts := time.Now().UTC().Format("2006/01/02-15:04:05")
	if err := fsutil.WriteString(r.FramesLog, fmt.Sprintf("%s: %s\n", ts, frame), true); err != nil {
		logging.Warnf("aprs", "failed to append to frames log: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", r.Host, r.Port)
	conn, err := net.DialTimeout("tcp", addr, r.dialTimeout)
	if err != nil {
		return fmt.Errorf("aprs: connect to %s failed: %w", addr, err)
	}
	defer conn.Close()

	login := fmt.Sprintf("user %s pass %s vers js8spotd 1.0\r\n", r.User, r.Passcode)
	if _, err := conn.Write([]byte(login)); err != nil {
		return fmt.Errorf("aprs: login write failed: %w", err)
	}

	if _, err := conn.Write([]byte(frame + "\r\n")); err != nil {
		return fmt.Errorf("aprs: frame write failed: %w", err)
	}

	return nil
}
