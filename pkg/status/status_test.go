package status_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tmarkko/quillcast/pkg/status"
)

func TestCodeStrings(t *testing.T) {
	want := map[status.Code]string{
		status.Success:            "SUCCESS",
		status.InsufficientMemory: "INSUFFICIENT_MEMORY",
		status.IOError:            "IO_ERROR",
		status.InvalidArgument:    "INVALID_ARGUMENT",
		status.ConfigurationError: "CONFIGURATION_ERROR",
		status.RuntimeError:       "RUNTIME_ERROR",
		status.OutOfRange:         "OUT_OF_RANGE",
		status.TryAgain:           "TRY_AGAIN",
		status.InvalidOperation:   "INVALID_OPERATION",
		status.Unknown:            "UNKNOWN",
	}

	seen := make(map[string]status.Code, len(want))
	for code, name := range want {
		got := code.String()
		if got != name {
			t.Errorf("Code(%d).String() = %q, want %q", code, got, name)
		}
		if prev, dup := seen[got]; dup {
			t.Errorf("codes %v and %v share the string %q", prev, code, got)
		}
		seen[got] = code
	}
}

func TestCodeOf(t *testing.T) {
	if got := status.CodeOf(nil); got != status.Success {
		t.Errorf("CodeOf(nil) = %v, want Success", got)
	}

	if got := status.CodeOf(errors.New("plain")); got != status.Unknown {
		t.Errorf("CodeOf(plain error) = %v, want Unknown", got)
	}

	err := status.New(status.IOError, "stream read failed")
	if got := status.CodeOf(err); got != status.IOError {
		t.Errorf("CodeOf = %v, want IOError", got)
	}

	wrapped := fmt.Errorf("capture stage: %w", err)
	if got := status.CodeOf(wrapped); got != status.IOError {
		t.Errorf("CodeOf(wrapped) = %v, want IOError", got)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := status.Errorf(status.InvalidOperation, "feature %q already enabled", "diarization")

	if !errors.Is(err, status.New(status.InvalidOperation, "")) {
		t.Error("errors.Is should match another *Error with the same code")
	}
	if errors.Is(err, status.New(status.IOError, "")) {
		t.Error("errors.Is should not match an *Error with a different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("device gone")
	err := status.Wrap(status.IOError, "error stopping stream", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be discoverable with errors.Is")
	}
	if got := status.CodeOf(err); got != status.IOError {
		t.Errorf("CodeOf = %v, want IOError", got)
	}
}
