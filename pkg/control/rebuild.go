package control

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dougsko/js8spotd/pkg/bandplan"
	"github.com/dougsko/js8spotd/pkg/fsutil"
	"github.com/dougsko/js8spotd/pkg/js8frame"
	"github.com/dougsko/js8spotd/pkg/logging"
	"github.com/dougsko/js8spotd/pkg/reassembler"
)

// refuseIfDecoderLive is the guard every mutating rebuild action calls
// before touching a shared file; rebuilds under --print-only never
// mutate anything and so are exempt.
func refuseIfDecoderLive(opts *Options) error {
	if opts.PrintOnly {
		return nil
	}
	live, err := decoderIsLive(opts.DataRoot)
	if err != nil {
		return err
	}
	if live {
		return ErrDecoderRunning
	}
	return nil
}

// loadDecodeLog loads one job's all_parsed_decodes.txt, tolerating a
// missing file (a job that has never produced a decode yet).
func loadDecodeLog(job *bandplan.ModeConfig) ([]*js8frame.FrameRecord, error) {
	path := job.AllParsedDecodesPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	rows, warnings, err := fsutil.LoadJSON(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	for _, w := range warnings {
		logging.Warnf("control", "%s: %s", path, w)
	}

	records := make([]*js8frame.FrameRecord, len(rows))
	for i, row := range rows {
		records[i] = js8frame.FromJSON(row)
	}
	return records, nil
}

// archiveThenOverwrite archives any existing file at path (copy to a
// datetime-suffixed name, then empty the original in place) and
// writes data as its sole new content, matching
// the archive-truncate-and-rewrite policy used by every rebuild
// action that isn't --print-only.
func archiveThenOverwrite(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := fsutil.Archive(path, "", fsutil.ArchiveTruncate); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fsutil.WriteStrings(path, []string{string(data) + "\n"}, false)
}

// RebuildSpots loads every job's all_parsed_decodes.txt, regenerates
// spot lines for spot && is_valid records, sorts them ascending by
// record_time, and either prints them or archives and overwrites the
// shared spot log.
func RebuildSpots(opts *Options) error {
	if err := refuseIfDecoderLive(opts); err != nil {
		return err
	}

	jobs, err := opts.Jobs()
	if err != nil {
		return err
	}

	type spotEntry struct {
		recordTime string
		line       string
	}
	var entries []spotEntry

	for _, job := range jobs {
		records, err := loadDecodeLog(job)
		if err != nil {
			return err
		}
		for _, r := range records {
			if r.Spot && r.IsValid {
				entries = append(entries, spotEntry{r.RecordTime, js8frame.FormatSpotLine(r)})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].recordTime < entries[j].recordTime })

	if opts.PrintOnly {
		for _, e := range entries {
			fmt.Println(e.line)
		}
		return nil
	}

	if _, err := os.Stat(opts.SpotLogPath); err == nil {
		if err := fsutil.Archive(opts.SpotLogPath, "", fsutil.ArchiveTruncate); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", opts.SpotLogPath, err)
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.line + "\n"
	}
	return fsutil.WriteStrings(opts.SpotLogPath, lines, false)
}

// RebuildAllDecodes re-parses every file under decode/done/ for each
// job and either prints the resulting FrameRecord JSON lines or
// archives and rewrites that job's all_parsed_decodes.txt.
func RebuildAllDecodes(opts *Options) error {
	if err := refuseIfDecoderLive(opts); err != nil {
		return err
	}

	jobs, err := opts.Jobs()
	if err != nil {
		return err
	}

	for _, job := range jobs {
		entries, err := os.ReadDir(job.DecodeDoneDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to scan %s: %w", job.DecodeDoneDir, err)
		}

		var rows []map[string]interface{}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(job.DecodeDoneDir, entry.Name())
			proc := js8frame.NewDecodeFileProcessor()
			records, err := proc.ProcessFile(path)
			if err != nil {
				logging.Errorf("control", "failed to re-parse %s: %v", path, err)
				continue
			}
			for _, r := range records {
				rows = append(rows, r.JSON())
			}
		}

		if opts.PrintOnly {
			for _, row := range rows {
				data, err := json.Marshal(row)
				if err != nil {
					return fmt.Errorf("failed to encode record: %w", err)
				}
				fmt.Println(string(data))
			}
			continue
		}

		path := job.AllParsedDecodesPath()
		if _, err := os.Stat(path); err == nil {
			if err := fsutil.Archive(path, "", fsutil.ArchiveTruncate); err != nil {
				return err
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := fsutil.AppendJSON(path, rows); err != nil {
			return err
		}
	}

	return nil
}

// RebuildHistory replays every job's all_parsed_decodes.txt through a
// single fresh Reassembler with APRS dispatch disabled (nil reporter,
// regardless of --aprsis), then either prints or archives and
// overwrites the three DB snapshots: callsign_history.db (the
// callsigns map), msgfreq.db (the open/msgByFreq map), and
// msgfreq_incomplete.db (the archived/expired map).
func RebuildHistory(opts *Options) error {
	if err := refuseIfDecoderLive(opts); err != nil {
		return err
	}

	jobs, err := opts.Jobs()
	if err != nil {
		return err
	}

	re := reassembler.New(nil)
	for _, job := range jobs {
		records, err := loadDecodeLog(job)
		if err != nil {
			return err
		}
		for _, r := range records {
			re.Feed(r)
		}
	}
	re.ArchiveExpired()

	callsignSnapshot := map[string]interface{}{}
	for name, cr := range re.CallsignsAll() {
		callsignSnapshot[name] = cr.JSON()
	}

	msgfreqSnapshot := freqSnapshot(re.OpenAll())
	msgfreqIncompleteSnapshot := freqSnapshot(re.IncompleteAll())

	if opts.PrintOnly {
		for _, snap := range []map[string]interface{}{callsignSnapshot, msgfreqSnapshot, msgfreqIncompleteSnapshot} {
			data, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("failed to encode snapshot: %w", err)
			}
			fmt.Println(string(data))
		}
		return nil
	}

	writes := []struct {
		path string
		snap map[string]interface{}
	}{
		{filepath.Join(opts.DataRoot, "callsign_history.db"), callsignSnapshot},
		{filepath.Join(opts.DataRoot, "msgfreq.db"), msgfreqSnapshot},
		{filepath.Join(opts.DataRoot, "msgfreq_incomplete.db"), msgfreqIncompleteSnapshot},
	}
	for _, w := range writes {
		data, err := json.Marshal(w.snap)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", w.path, err)
		}
		if err := archiveThenOverwrite(w.path, data); err != nil {
			return err
		}
	}
	return nil
}

func freqSnapshot(byFreq map[int][]*reassembler.ActivityRecord) map[string]interface{} {
	out := make(map[string]interface{}, len(byFreq))
	for freq, activities := range byFreq {
		rows := make([]map[string]interface{}, len(activities))
		for i, a := range activities {
			rows[i] = a.JSON()
		}
		out[strconv.Itoa(freq)] = rows
	}
	return out
}
