// Package listen formats the URL a local server can be reached on.
package listen

import (
	"net"
	"strconv"
)

const loopback = "127.0.0.1"

// Host is the host to show for a server configured with host and bound on
// addr. Wildcard binds show the bound IP when it is specific, else loopback.
func Host(host string, addr net.Addr) string {
	switch host {
	case "", "0.0.0.0", "::":
	default:
		return host
	}
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP != nil && !tcp.IP.IsUnspecified() {
		return tcp.IP.String()
	}
	return loopback
}

// URL renders scheme://host:port/path for a listener configured on
// hostport. When addr is a bound TCP address its port wins, so ":0"
// listeners report the port they got.
func URL(scheme, hostport string, addr net.Addr, path string) string {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return scheme + "://" + hostport + path
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = strconv.Itoa(tcp.Port)
	}
	return scheme + "://" + net.JoinHostPort(Host(host, addr), port) + path
}
