package js8frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeartbeatFrame(t *testing.T) {
	// S1: heartbeat with callsign VK4TMZ, grid QG62, offset 1500,
	// thread_type 3, freq_khz 10130.
	p := &Parser{
		FreqKHz:    10130,
		RadioMode:  "usb",
		RecordTime: time.Date(2025, 10, 26, 19, 26, 30, 0, time.UTC),
	}

	rec, err := p.Parse("1500 -9 0.1 A HB 3 VK4TMZ QG62")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 10130000, rec.DialFreq)
	assert.Equal(t, rec.DialFreq+rec.Offset, rec.Freq, "invariant: freq == dial_freq + offset")
	assert.Equal(t, 10131500, rec.Freq)
	assert.Equal(t, FrameHeartbeat, rec.Class)
	assert.True(t, rec.Spot, "expected spot=true for heartbeat with grid")
	assert.True(t, rec.IsValid, "validation_msg=%q", rec.ValidationMsg)
	assert.Equal(t, "VK4TMZ", rec.Callsign)
	assert.Equal(t, "QG62", rec.Locator)
}

func TestParseHeartbeatInvalidCallsign(t *testing.T) {
	// S5: heartbeat with invalid callsign "12345" must fail validation
	// but still be emitted.
	p := &Parser{
		FreqKHz:    10130,
		RadioMode:  "usb",
		RecordTime: time.Date(2025, 10, 26, 19, 26, 30, 0, time.UTC),
	}

	rec, err := p.Parse("1500 -9 0.1 A HB 3 12345 QG62")
	require.NoError(t, err)
	require.NotNil(t, rec, "record must still be emitted despite failing validation")

	assert.False(t, rec.IsValid)
	assert.False(t, rec.Spot)
	assert.NotEmpty(t, rec.ValidationMsg)
}

func TestParseSkipsNoiseMarkers(t *testing.T) {
	p := &Parser{
		FreqKHz:    7078,
		RadioMode:  "usb",
		RecordTime: time.Now().UTC(),
	}

	for _, line := range []string{
		"<DecodeStarted>",
		" <DecodeDebug>",
		"<DecodeFinished>",
		" EOF on input file /tmp/foo.wav",
	} {
		rec, err := p.Parse(line)
		assert.NoError(t, err, "Parse(%q)", line)
		assert.Nil(t, rec, "Parse(%q)", line)
	}
}

func TestParseRequiresConfiguration(t *testing.T) {
	p := &Parser{}
	_, err := p.Parse("1500 -9 0.1 A HB 3 VK4TMZ QG62")
	assert.Error(t, err, "expected error when freq_khz/record_time are unset")
}

func TestParseIgnoreListSkipsValidation(t *testing.T) {
	p := &Parser{
		FreqKHz:    27246,
		RadioMode:  "usb",
		RecordTime: time.Now().UTC(),
	}

	rec, err := p.Parse("1500 -9 0.1 A HB 3 12345 NOTAGRID")
	require.NoError(t, err)
	assert.True(t, rec.IsValid, "validation should be skipped entirely on the ignore-list frequency")
}

func TestParseDirectedFrame(t *testing.T) {
	p := &Parser{
		FreqKHz:    7078,
		RadioMode:  "usb",
		RecordTime: time.Now().UTC(),
	}

	rec, err := p.Parse("801 -5 0.2 A DIR 3 VK4TAA VK4TMZ MSG HELLO THERE")
	require.NoError(t, err)

	assert.Equal(t, FrameDirected, rec.Class)
	assert.Equal(t, "VK4TMZ", rec.CallsignTo)
	assert.True(t, rec.IsValid, "validation_msg=%q", rec.ValidationMsg)
}
