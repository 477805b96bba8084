package common_test

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/remote-compute/internal/common"
)

func TestWrapError(t *testing.T) {
	if err := common.WrapError(nil, "stdout pipe"); err != nil {
		t.Errorf("WrapError(nil) = %v, want nil", err)
	}

	cause := errors.New("too many open files")
	err := common.WrapError(cause, "stdout pipe")
	if !errors.Is(err, cause) {
		t.Errorf("cause not preserved: %v", err)
	}
	if got, want := err.Error(), "stdout pipe: too many open files"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
