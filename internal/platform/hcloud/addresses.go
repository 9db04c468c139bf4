package hcloud

import "github.com/hetznercloud/hcloud-go/v2/hcloud"

// ServerIPv4 extracts the public IPv4 address from a server, or empty string if not set.
func ServerIPv4(s *hcloud.Server) string {
	if s != nil && s.PublicNet.IPv4.IP != nil {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}

// ServerIPv6 returns the public IPv6 network of a server in CIDR form,
// falling back to the bare address, or empty string if not set.
func ServerIPv6(s *hcloud.Server) string {
	if s == nil {
		return ""
	}
	if s.PublicNet.IPv6.Network != nil {
		return s.PublicNet.IPv6.Network.String()
	}
	if s.PublicNet.IPv6.IP != nil {
		return s.PublicNet.IPv6.IP.String()
	}
	return ""
}
