// Package reassembler aggregates a stream of js8frame.FrameRecord
// values into complete ActivityRecord transmissions (C7), tracks
// callsign history, and dispatches @APRSIS-directed completions to an
// APRS reporter.
package reassembler

import (
	"github.com/google/uuid"

	"github.com/dougsko/js8spotd/pkg/js8frame"
)

// ActivityRecord is the reassembler's working grouping of frames that
// share (freq, offset±BW, time proximity). It is created on the first
// unmatched frame and mutated only by the Reassembler that owns it.
type ActivityRecord struct {
	ID string

	FirstTS     int64
	LastTS      int64
	Offset      int
	OffsetTotal int
	Msgs        []*js8frame.FrameRecord

	SeenFirst  bool
	SeenLast   bool
	IsComplete bool
	IsExpired  bool

	// Completion payload, populated once on completion.
	Timestamp int64
	Callsign  string
	Locator   string
	DialFreq  int
	Freq      int
	FullMsg   string
	SNR       float64
}

func newActivity(r *js8frame.FrameRecord) *ActivityRecord {
	return &ActivityRecord{
		ID:          uuid.NewString(),
		FirstTS:     r.Timestamp,
		LastTS:      r.Timestamp,
		Offset:      r.Offset,
		OffsetTotal: r.Offset,
		Msgs:        []*js8frame.FrameRecord{r},
	}
}

// CallsignRecord tracks a callsign's completed activity across all
// bands this Reassembler has processed.
type CallsignRecord struct {
	FirstTS    int64
	LastTS     int64
	LastFreq   int
	Activities []*ActivityRecord

	// Index keyed by "YYYY-MM-DD|HH|dial_freq".
	Index map[string][]*ActivityRecord
}

func newCallsignRecord() *CallsignRecord {
	return &CallsignRecord{Index: make(map[string][]*ActivityRecord)}
}

// JSON renders the completion payload as a flat map, the form
// persisted into msgfreq.db / msgfreq_incomplete.db snapshots. Msgs
// are omitted; only the finalized activity is of interest once
// archived.
func (a *ActivityRecord) JSON() map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"first_ts":    a.FirstTS,
		"last_ts":     a.LastTS,
		"offset":      a.Offset,
		"seen_first":  a.SeenFirst,
		"seen_last":   a.SeenLast,
		"is_complete": a.IsComplete,
		"is_expired":  a.IsExpired,
		"timestamp":   a.Timestamp,
		"callsign":    a.Callsign,
		"locator":     a.Locator,
		"dial_freq":   a.DialFreq,
		"freq":        a.Freq,
		"full_msg":    a.FullMsg,
		"snr":         a.SNR,
	}
}

// JSON renders the callsign's history as a flat map, the form
// persisted into callsign_history.db. Activities are referenced by ID
// rather than embedded in full.
func (cr *CallsignRecord) JSON() map[string]interface{} {
	ids := make([]string, len(cr.Activities))
	for i, a := range cr.Activities {
		ids[i] = a.ID
	}
	return map[string]interface{}{
		"first_ts":    cr.FirstTS,
		"last_ts":     cr.LastTS,
		"last_freq":   cr.LastFreq,
		"activities":  ids,
		"num_entries": len(cr.Index),
	}
}
