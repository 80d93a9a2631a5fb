package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Action tells the caller what to do with a Resolution.
type Action int

const (
	// ActionRun means Config is complete and the run can start.
	ActionRun Action = iota
	// ActionHelp means the help text was requested.
	ActionHelp
	// ActionUsageError means Message and the help text should be printed.
	// It is not a failure: the process still exits with status 0.
	ActionUsageError
)

// Resolution is the outcome of resolving the command line.
type Resolution struct {
	Action  Action
	Config  RunConfig
	Message string
}

var (
	errMissingValue = errors.New("missing value")
	errNegative     = errors.New("must not be negative")
	errZero         = errors.New("must be greater than zero")
)

// ParseError is returned for a malformed numeric flag value. It is fatal:
// the run never starts.
type ParseError struct {
	Flag  string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, errMissingValue) {
		return fmt.Sprintf("invalid integer for %s: missing value", e.Flag)
	}
	return fmt.Sprintf("invalid integer for %s: %q: %v", e.Flag, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Flag names as typed on the command line.
const (
	flagTotalCalls       = "-totalCalls"
	flagNumThreads       = "-numThreads"
	flagSleepTime        = "-sleepTime"
	flagRequestTimeout   = "-requestTimeOut"
	flagConnectTimeout   = "-connectTimeOut"
	flagReuseConnects    = "-reuseConnects"
	flagKeepConnectsOpen = "-keepConnectsOpen"
	flagConfigFile       = "-configFile"
)

type intSetter func(c *RunConfig, n int)

var intFlags = map[string]intSetter{
	flagTotalCalls:     func(c *RunConfig, n int) { c.TotalCalls = n },
	flagNumThreads:     func(c *RunConfig, n int) { c.NumThreads = n },
	flagSleepTime:      func(c *RunConfig, n int) { c.SleepTime = millis(n) },
	flagRequestTimeout: func(c *RunConfig, n int) { c.RequestTimeout = millis(n) },
	flagConnectTimeout: func(c *RunConfig, n int) { c.ConnectTimeout = millis(n) },
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

var millisFlags = map[string]bool{
	flagSleepTime:      true,
	flagRequestTimeout: true,
	flagConnectTimeout: true,
}

var boolFlags = map[string]func(c *RunConfig){
	flagReuseConnects:    func(c *RunConfig) { c.ReuseConnects = true },
	flagKeepConnectsOpen: func(c *RunConfig) { c.KeepConnectsOpen = true },
}

// IsHelpFlag reports whether arg asks for the help text.
func IsHelpFlag(arg string) bool {
	return arg == "-?" || arg == "--help"
}

// Resolve turns the raw argument list (without the program name) into a
// Resolution.
//
// The first argument is the target URL. The rest is scanned left to right
// as "-flag value" pairs; boolean flags take no value and unknown tokens
// are skipped. A profile named with -configFile is applied before any flag,
// whatever its position.
//
// The returned error is either a *ParseError or a profile loading error.
// Usage problems (no arguments, bad URL) are not errors.
func Resolve(args []string) (Resolution, error) {
	if len(args) == 0 {
		return Resolution{
			Action:  ActionUsageError,
			Message: "Error: No command line argument provided.",
		}, nil
	}

	for _, arg := range args {
		if IsHelpFlag(arg) {
			return Resolution{Action: ActionHelp}, nil
		}
	}

	url := args[0]
	if !ValidURL(url) {
		return Resolution{
			Action:  ActionUsageError,
			Message: fmt.Sprintf("Error: %q is not a valid URL", url),
		}, nil
	}

	cfg := Default(url)

	profilePath, err := findProfile(args[1:])
	if err != nil {
		return Resolution{}, err
	}
	if profilePath != "" {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load profile %s: %w", profilePath, err)
		}
		profile.Apply(&cfg)
	}

	rest := args[1:]
	for i := 0; i < len(rest); {
		name := rest[i]

		if set, ok := intFlags[name]; ok {
			n, err := parseFlagValue(name, rest, i)
			if err != nil {
				return Resolution{}, err
			}
			set(&cfg, n)
			i += 2
			continue
		}

		if set, ok := boolFlags[name]; ok {
			set(&cfg)
			i++
			continue
		}

		if name == flagConfigFile {
			i += 2
			continue
		}

		i++
	}

	if cfg.NumThreads == 0 {
		return Resolution{}, &ParseError{Flag: "numThreads", Value: "0", Err: errZero}
	}

	return Resolution{Action: ActionRun, Config: cfg}, nil
}

// findProfile returns the value following -configFile, if present.
func findProfile(args []string) (string, error) {
	for i, arg := range args {
		if arg != flagConfigFile {
			continue
		}
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a file path", flagConfigFile)
		}
		return args[i+1], nil
	}
	return "", nil
}

func parseFlagValue(name string, args []string, i int) (int, error) {
	flag := name[1:]
	if i+1 >= len(args) {
		return 0, &ParseError{Flag: flag, Err: errMissingValue}
	}

	value := args[i+1]
	n, err := strconv.Atoi(value)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, &ParseError{Flag: flag, Value: value, Err: err}
	}
	if n < 0 {
		return 0, &ParseError{Flag: flag, Value: value, Err: errNegative}
	}
	if millisFlags[name] && int64(n) > maxMillis {
		return 0, &ParseError{Flag: flag, Value: value, Err: strconv.ErrRange}
	}
	return n, nil
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
