package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const LocalClient = "localhost"

var dockerBridges = netip.MustParsePrefix("172.16.0.0/12")

// IPIsLocal reports whether addr (with or without a port) is a loopback
// address or a docker bridge gateway (172.x.0.1), which is where requests
// proxied from the host appear to come from.
func IPIsLocal(addr string) bool {
	ip, err := parseAddr(addr)
	if err != nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	b := ip.As16()
	return ip.Is4() && dockerBridges.Contains(ip) && b[14] == 0 && b[15] == 1
}

// ReadUserIP returns the client IP, preferring the proxy headers over the
// remote address. Local clients collapse into LocalClient.
func ReadUserIP(r *http.Request) (string, error) {
	candidate := strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	if candidate == "" {
		candidate = strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	}
	if candidate == "" {
		candidate = r.RemoteAddr
	}

	ip, err := parseAddr(candidate)
	if err != nil {
		return "", err
	}
	if IPIsLocal(candidate) {
		return LocalClient, nil
	}
	return ip.String(), nil
}

func parseAddr(addr string) (netip.Addr, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip addr %q is invalid", addr)
	}
	return ip.Unmap(), nil
}
