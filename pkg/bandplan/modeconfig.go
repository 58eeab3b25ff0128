package bandplan

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModeConfig materializes the directory layout for one (freq, submode)
// worker. It is created once at worker startup and never mutated.
type ModeConfig struct {
	FreqKHz     int
	Submode     Submode
	DataRoot    string
	McastAddr   string
	SpotLogPath string

	RecDir        string
	RecErrorDir   string
	RecDoneDir    string
	DataDir       string
	DecodeDir     string
	DecodeErrDir  string
	DecodeDoneDir string
	TmpDir        string
}

// NewModeConfig computes the eight absolute directory paths for
// (freqKHz, submode) under dataRoot, but does not create them.
func NewModeConfig(freqKHz int, submode Submode, dataRoot, mcastAddr, spotLogPath string) (*ModeConfig, error) {
	if !ValidFreq(freqKHz) {
		return nil, fmt.Errorf("unknown frequency %d kHz", freqKHz)
	}
	if !submode.Valid() {
		return nil, fmt.Errorf("unknown submode %q", submode)
	}

	freqHz := freqKHz * 1000
	root := filepath.Join(dataRoot, fmt.Sprintf("%d", freqHz), string(submode))

	return &ModeConfig{
		FreqKHz:     freqKHz,
		Submode:     submode,
		DataRoot:    dataRoot,
		McastAddr:   mcastAddr,
		SpotLogPath: spotLogPath,

		RecDir:        filepath.Join(root, "rec"),
		RecErrorDir:   filepath.Join(root, "rec", "error"),
		RecDoneDir:    filepath.Join(root, "rec", "done"),
		DataDir:       filepath.Join(root, "data"),
		DecodeDir:     filepath.Join(root, "decode"),
		DecodeErrDir:  filepath.Join(root, "decode", "error"),
		DecodeDoneDir: filepath.Join(root, "decode", "done"),
		TmpDir:        filepath.Join(root, "tmp"),
	}, nil
}

// Dirs returns all eight directories in the order they must be created.
func (m *ModeConfig) Dirs() []string {
	return []string{
		m.RecDir, m.RecErrorDir, m.RecDoneDir,
		m.DataDir,
		m.DecodeDir, m.DecodeErrDir, m.DecodeDoneDir,
		m.TmpDir,
	}
}

// Ensure creates all eight directories, and the submode root that
// holds them, if they do not already exist.
func (m *ModeConfig) Ensure() error {
	for _, dir := range m.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// AllParsedDecodesPath is the per-(freq,submode) append-only decode log.
func (m *ModeConfig) AllParsedDecodesPath() string {
	return filepath.Join(m.DataDir, "all_parsed_decodes.txt")
}

// FreqHz returns the dial frequency in Hz.
func (m *ModeConfig) FreqHz() int {
	return m.FreqKHz * 1000
}
