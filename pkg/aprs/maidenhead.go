package aprs

import (
	"fmt"
	"math"
)

// gridTopLeft converts a Maidenhead grid locator to the decimal
// latitude/longitude of its top-left corner (not its center — APRS
// position reports use the corner, unlike the demodulator's own
// center-based grid<->degrees arithmetic).
func gridTopLeft(grid string) (lat, lon float64, err error) {
	g := []rune(normalizeGrid(grid))
	if len(g) < 4 {
		return 0, 0, fmt.Errorf("grid %q too short", grid)
	}

	lon = float64(g[0]-'A')*20 - 180
	lat = float64(g[1]-'A')*10 - 90
	lon += float64(g[2]-'0') * 2
	lat += float64(g[3]-'0') * 1

	if len(g) >= 6 {
		lon += float64(g[4]-'a') * (2.0 / 24.0)
		lat += float64(g[5]-'a') * (1.0 / 24.0)
	}

	return lat, lon, nil
}

func normalizeGrid(grid string) string {
	r := []rune(grid)
	for i := range r {
		switch {
		case i < 4:
			r[i] = toUpperRune(r[i])
		default:
			r[i] = toLowerRune(r[i])
		}
	}
	return string(r)
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// GridToAPRS converts a Maidenhead grid locator into the APRS
// DDMM.mmH / DDDMM.mmH latitude/longitude pair, taking the grid's
// top-left corner. Degrees split into minutes then seconds; a
// seconds-or-minutes value that rounds up to 60 carries into the next
// coarser unit.
func GridToAPRS(grid string) (latStr, lonStr string, err error) {
	lat, lon, err := gridTopLeft(grid)
	if err != nil {
		return "", "", err
	}

	latDir := "N"
	if lat < 0 {
		lat = -lat
		latDir = "S"
	}
	lonDir := "E"
	if lon < 0 {
		lon = -lon
		lonDir = "W"
	}

	latStr = formatAPRSCoord(lat, 2, latDir)
	lonStr = formatAPRSCoord(lon, 3, lonDir)
	return latStr, lonStr, nil
}

// formatAPRSCoord converts decimal degrees into the DDMM.mm / DDDMM.mm
// APRS coordinate form, carrying minute/second rounding into the next
// coarser unit exactly as the original Python implementation does.
func formatAPRSCoord(deg float64, intDigits int, dir string) string {
	iDeg, fDeg := math.Modf(deg)
	iMin, fMin := math.Modf(fDeg * 60)
	iSec := math.Round(fMin * 60)

	if iSec == 60 {
		iMin++
		iSec = 0
	}
	if iMin == 60 {
		iDeg++
		iMin = 0
	}

	aprsVal := iDeg*100 + iMin + (iSec / 60.0)

	if intDigits == 2 {
		return fmt.Sprintf("%07.2f%s", aprsVal, dir)
	}
	return fmt.Sprintf("%08.2f%s", aprsVal, dir)
}
