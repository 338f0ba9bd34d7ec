package wop

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
)

// When fakeCargoEnv is set the test binary acts as cargo: it appends its
// arguments to the file named by fakeCargoEnv, replays fakeEventsEnv on
// stdout for JSON builds and exits with fakeExitEnv.
const (
	fakeCargoEnv  = "WOP_TEST_FAKE_CARGO"
	fakeEventsEnv = "WOP_TEST_FAKE_EVENTS"
	fakeExitEnv   = "WOP_TEST_FAKE_EXIT"
)

func TestMain(m *testing.M) {
	if logFile := os.Getenv(fakeCargoEnv); logFile != "" {
		os.Exit(fakeCargo(logFile, os.Args[1:]))
	}
	os.Exit(m.Run())
}

func fakeCargo(logFile string, args []string) int {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 101
	}
	_, _ = fmt.Fprintln(f, strings.Join(args, " "))
	_ = f.Close()

	if slices.Contains(args, "--message-format") {
		if events := os.Getenv(fakeEventsEnv); events != "" {
			data, err := os.ReadFile(events)
			if err != nil {
				_, _ = fmt.Fprintln(os.Stderr, err)
				return 101
			}
			_, _ = os.Stdout.Write(data)
		}
	}

	code, _ := strconv.Atoi(os.Getenv(fakeExitEnv))
	return code
}
