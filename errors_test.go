package filelock

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"
)

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Key: "/tmp/locks/job-42.lock", Duration: time.Second}

	if !strings.Contains(err.Error(), "/tmp/locks/job-42.lock") {
		t.Fatalf("Error() = %q, want it to name the contended lock", err.Error())
	}
	if !err.Timeout() {
		t.Fatal("Timeout() = false, want true")
	}

	if !IsTimeout(err) {
		t.Fatal("IsTimeout() = false, want true")
	}

	wrapped := fmt.Errorf("acquiring job lock: %w", err)
	if !IsTimeout(wrapped) {
		t.Fatal("IsTimeout() on wrapped error = false, want true")
	}

	terr, ok := AsTimeout(wrapped)
	if !ok {
		t.Fatal("AsTimeout() on wrapped error = false, want true")
	}
	if terr.Key != "/tmp/locks/job-42.lock" {
		t.Fatalf("AsTimeout().Key = %q, want original key", terr.Key)
	}

	if IsIOError(err) {
		t.Fatal("IsIOError() on timeout = true, want false")
	}
}

func TestIOError(t *testing.T) {
	err := &IOError{Op: "create", Key: "/tmp/locks/job-42.lock", Err: fs.ErrNotExist}

	if !IsIOError(err) {
		t.Fatal("IsIOError() = false, want true")
	}
	if IsTimeout(err) {
		t.Fatal("IsTimeout() on IO error = true, want false")
	}

	// The underlying fault stays reachable through the wrap chain.
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("errors.Is(err, fs.ErrNotExist) = false, want true")
	}

	ierr, ok := AsIOError(fmt.Errorf("acquire: %w", err))
	if !ok {
		t.Fatal("AsIOError() on wrapped error = false, want true")
	}
	if ierr.Op != "create" {
		t.Fatalf("AsIOError().Op = %q, want %q", ierr.Op, "create")
	}
}

func TestAsTimeoutMiss(t *testing.T) {
	terr, ok := AsTimeout(errors.New("plain"))
	if ok || terr != nil {
		t.Fatalf("AsTimeout() = %v, %v, want nil, false", terr, ok)
	}
}
