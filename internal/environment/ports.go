package environment

import (
	"fmt"
	"net"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// Indirections for tests.
var (
	connections = gopsnet.Connections
	dialTimeout = net.DialTimeout
)

// ListeningTCPPorts returns the set of local TCP ports currently in LISTEN
// state. Errors degrade to an empty set: the caller falls back to dialing.
func ListeningTCPPorts() map[int]bool {
	ports := make(map[int]bool)

	conns, err := connections("tcp")
	if err != nil {
		return ports
	}
	for _, conn := range conns {
		if conn.Status == "LISTEN" {
			ports[int(conn.Laddr.Port)] = true
		}
	}
	return ports
}

// PortReachable reports whether a TCP connection to host:port succeeds within
// the timeout.
func PortReachable(host string, port int, timeout time.Duration) bool {
	conn, err := dialTimeout("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
