package listen

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

const maxPort = 65535

// ErrInvalidPort is returned for a preferred port outside 1..65535.
var ErrInvalidPort = errors.New("listen: invalid port")

// Listen binds host:preferred, probing upward one port at a time while the port is in use.
// At most probeLimit further ports are tried and never beyond 65535. If all of them are
// taken it falls back to an OS-assigned port. Errors other than "address in use" stop the probe.
//
// The returned listener is already bound, so there is no window between finding a port and using it.
func Listen(host string, preferred, probeLimit int) (net.Listener, int, error) {
	if preferred < 1 || preferred > maxPort {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidPort, preferred)
	}
	if probeLimit < 0 {
		probeLimit = 0
	}

	last := preferred + probeLimit
	if last > maxPort {
		last = maxPort
	}
	for port := preferred; port <= last; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln, port, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, fmt.Errorf("listen on port %d: %w", port, err)
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, 0, fmt.Errorf("listen on ephemeral port: %w", err)
	}
	return ln, ln.Addr().(*net.TCPAddr).Port, nil
}
