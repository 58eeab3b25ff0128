package control

import "errors"

// ErrAlreadyRunning is returned by decode start when the decoder PID
// file already names a live process. Record start returns
// recorder.ErrAlreadyRunning instead.
var ErrAlreadyRunning = errors.New("control: already running")

// ErrNotRunning is returned by decode stop/status when the decoder PID
// file is empty or absent. Record stop/status return
// recorder.ErrNotRunning instead.
var ErrNotRunning = errors.New("control: not running")

// ErrMissingAPRSCredentials is returned when --aprsis is requested but
// the loaded configuration lacks user/passcode/reporter.
var ErrMissingAPRSCredentials = errors.New("control: aprsis requested but user, passcode, or reporter is missing")

// ErrUnknownFrequency is returned when a -f/--freq value falls outside
// the fixed band set.
var ErrUnknownFrequency = errors.New("control: unknown frequency")

// ErrUnknownSubmode is returned when a --sub-mode value isn't one
// of the four known submodes.
var ErrUnknownSubmode = errors.New("control: unknown submode")

// ErrDecoderRunning is returned by a rebuild action when the decoder
// PID file indicates a live decoder process.
var ErrDecoderRunning = errors.New("control: refusing to rebuild while the decoder is running")

// ErrUnknownAction is returned when -a/--action (or the positional
// process argument) doesn't match any known subcommand.
var ErrUnknownAction = errors.New("control: unknown action")
