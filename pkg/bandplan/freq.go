package bandplan

import "fmt"

// FreqList is the fixed closed set of JS8 band centers, in kHz.
//
// FreqSSRC is the parallel SSRC table; FreqSSRC[i] is the RTP SSRC used
// to address the recording stream for FreqList[i]. The two diverge on
// band 18104: the upstream source carries both 18104 and 18106 across
// versions of the SSRC table. That divergence is preserved here rather
// than resolved, per the documented open question.
var FreqList = []int{1842, 3578, 7078, 10130, 14078, 18104, 21078, 24922, 28078, 27246}

var FreqSSRC = []int{1842, 3578, 7078, 10130, 14078, 18106, 21078, 24922, 28078, 27246}

// SSRCFor looks up the SSRC for a frequency by table index, not
// computation — the mapping is a configuration table, never derived.
func SSRCFor(freqKHz int) (int, error) {
	for i, f := range FreqList {
		if f == freqKHz {
			return FreqSSRC[i], nil
		}
	}
	return 0, fmt.Errorf("unknown frequency %d kHz", freqKHz)
}

// ValidFreq reports whether freqKHz is in the fixed band set.
func ValidFreq(freqKHz int) bool {
	for _, f := range FreqList {
		if f == freqKHz {
			return true
		}
	}
	return false
}
