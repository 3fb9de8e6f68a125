package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PortMap maps a published host port to a container port spec such as
// "5000/tcp".
type PortMap map[string]string

// DefaultPorts is the mapping used when a run request names none.
func DefaultPorts() PortMap {
	return PortMap{"5000": "5000/tcp"}
}

// ParsePortMap parses "host:container[/proto]" entries. A bare "port"
// publishes the same number on both sides.
func ParsePortMap(specs []string) (PortMap, error) {
	pm := make(PortMap, len(specs))
	for _, spec := range specs {
		host, ctr, found := strings.Cut(strings.TrimSpace(spec), ":")
		if !found {
			ctr = host
		}
		num, proto, _ := strings.Cut(ctr, "/")
		if proto == "" {
			proto = "tcp"
		}
		if err := validPort(host); err != nil {
			return nil, fmt.Errorf("invalid port mapping %q: %w", spec, err)
		}
		if err := validPort(num); err != nil {
			return nil, fmt.Errorf("invalid port mapping %q: %w", spec, err)
		}
		pm[host] = num + "/" + proto
	}
	return pm, nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port %q is not a number", s)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d out of range", n)
	}
	return nil
}

// HostPorts returns the published ports in sorted order.
func (p PortMap) HostPorts() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Conflicts reports whether any published port is shared with other.
func (p PortMap) Conflicts(other PortMap) bool {
	for k := range p {
		if _, ok := other[k]; ok {
			return true
		}
	}
	return false
}

func (p PortMap) String() string {
	parts := make([]string, 0, len(p))
	for _, k := range p.HostPorts() {
		parts = append(parts, k+":"+p[k])
	}
	return strings.Join(parts, ", ")
}
