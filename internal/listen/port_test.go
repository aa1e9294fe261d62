package listen

import (
	"errors"
	"net"
	"testing"
)

// busyPort holds an OS-assigned port open for the duration of the test.
func busyPort(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestListen_SkipsPortInUse(t *testing.T) {
	_, taken := busyPort(t)
	if taken == maxPort {
		t.Skip("ephemeral port at top of range")
	}

	ln, port, err := Listen("127.0.0.1", taken, 10)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if port == taken {
		t.Fatalf("expected a port other than %d", taken)
	}
	if port != ln.Addr().(*net.TCPAddr).Port {
		t.Fatalf("reported port %d does not match listener %s", port, ln.Addr())
	}
}

func TestListen_UsesPreferredWhenFree(t *testing.T) {
	ln, free := busyPort(t)
	_ = ln.Close()

	got, port, err := Listen("127.0.0.1", free, 0)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer got.Close()
	if port != free {
		t.Fatalf("expected preferred port %d, got %d", free, port)
	}
}

func TestListen_FallsBackToEphemeral(t *testing.T) {
	_, taken := busyPort(t)

	ln, port, err := Listen("127.0.0.1", taken, 0)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	if port == taken || port == 0 {
		t.Fatalf("expected an OS-assigned port, got %d", port)
	}
}

func TestListen_InvalidPortIsFatal(t *testing.T) {
	for _, p := range []int{0, -1, 65536} {
		if _, _, err := Listen("127.0.0.1", p, 10); !errors.Is(err, ErrInvalidPort) {
			t.Fatalf("port %d: expected ErrInvalidPort, got %v", p, err)
		}
	}
}
