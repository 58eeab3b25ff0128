package control

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dougsko/js8spotd/pkg/bandplan"
)

func decodeOptions(t *testing.T, root string) *Options {
	t.Helper()
	return &Options{
		DataRoot:       root,
		McastAddr:      "js8-pcm.local",
		SpotLogPath:    filepath.Join(root, "js8.log"),
		DemodulatorBin: "/bin/true",
		Freqs:          []int{7078},
		Submodes:       []bandplan.Submode{bandplan.Fast},
	}
}

func TestStartDecodersWritesAndArchivesPIDFileOnCancel(t *testing.T) {
	root := t.TempDir()
	opts := decodeOptions(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := StartDecoders(ctx, opts); err != nil {
		t.Fatalf("StartDecoders: %v", err)
	}

	if _, err := os.Stat(decoderPIDPath(root)); !os.IsNotExist(err) {
		t.Error("expected the decoder pid file to be archived after shutdown")
	}

	matches, err := filepath.Glob(decoderPIDPath(root) + ".*")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("expected exactly one archived decoder pid file, got %d", len(matches))
	}
}

func TestStartDecodersRequiresAPRSCredentialsWhenEnabled(t *testing.T) {
	root := t.TempDir()
	opts := decodeOptions(t, root)
	opts.APRSEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := StartDecoders(ctx, opts); !errors.Is(err, ErrMissingAPRSCredentials) {
		t.Errorf("StartDecoders = %v, want ErrMissingAPRSCredentials", err)
	}
}

func TestDecoderStatusReturnsErrNotRunningWithNoPIDFile(t *testing.T) {
	root := t.TempDir()
	opts := decodeOptions(t, root)

	if _, err := DecoderStatus(opts); !errors.Is(err, ErrNotRunning) {
		t.Errorf("DecoderStatus = %v, want ErrNotRunning", err)
	}
}

func TestStopDecodersReturnsErrNotRunningWithNoPIDFile(t *testing.T) {
	root := t.TempDir()
	opts := decodeOptions(t, root)

	if err := StopDecoders(opts); !errors.Is(err, ErrNotRunning) {
		t.Errorf("StopDecoders = %v, want ErrNotRunning", err)
	}
}
