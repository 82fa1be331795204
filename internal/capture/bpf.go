package capture

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/bpf"
)

// CompileFilter assembles a classic BPF program for a small tcpdump-style
// filter language: "ip", "ip6", "src <addr>", "dst <addr>", "host <addr>".
// Address conditions are IPv4 only and imply the IPv4 ethertype check.
// AF_PACKET has no libpcap compiler attached, hence this hand-assembled
// subset.
func CompileFilter(filter string) ([]bpf.RawInstruction, error) {
	filter = strings.TrimSpace(strings.ToLower(filter))
	if filter == "" {
		return nil, fmt.Errorf("empty filter")
	}

	if addr, ok := matchAddr(filter, "src"); ok {
		return assembleAddrFilter(addr, 26, 0)
	}
	if addr, ok := matchAddr(filter, "dst"); ok {
		return assembleAddrFilter(addr, 30, 0)
	}
	if addr, ok := matchAddr(filter, "host"); ok {
		return assembleAddrFilter(addr, 26, 30)
	}

	switch filter {
	case "ip", "ipv4":
		return assembleEtherTypeFilter(0x0800)
	case "ip6", "ipv6":
		return assembleEtherTypeFilter(0x86DD)
	}
	return nil, fmt.Errorf("unsupported filter expression: %s", filter)
}

var addrExpr = regexp.MustCompile(`^(src|dst|host)\s+([0-9.]+)$`)

func matchAddr(filter, keyword string) (net.IP, bool) {
	m := addrExpr.FindStringSubmatch(filter)
	if len(m) != 3 || m[1] != keyword {
		return nil, false
	}
	ip := net.ParseIP(m[2])
	if ip == nil || ip.To4() == nil {
		return nil, false
	}
	return ip.To4(), true
}

// assembleEtherTypeFilter passes packets whose ethertype matches.
func assembleEtherTypeFilter(etherType uint32) ([]bpf.RawInstruction, error) {
	return bpf.Assemble([]bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: etherType, SkipFalse: 1},
		bpf.RetConstant{Val: 65535},
		bpf.RetConstant{Val: 0},
	})
}

// assembleAddrFilter passes IPv4 packets whose address at off1 (or off2,
// when non-zero) equals ip. Offsets 26/30 are the IPv4 source/destination
// addresses behind an untagged Ethernet header.
func assembleAddrFilter(ip net.IP, off1, off2 uint32) ([]bpf.RawInstruction, error) {
	addr := uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])

	if off2 == 0 {
		return bpf.Assemble([]bpf.Instruction{
			bpf.LoadAbsolute{Off: 12, Size: 2},
			bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0x0800, SkipTrue: 3},
			bpf.LoadAbsolute{Off: off1, Size: 4},
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: addr, SkipFalse: 1},
			bpf.RetConstant{Val: 65535},
			bpf.RetConstant{Val: 0},
		})
	}

	// host: match either source or destination.
	return bpf.Assemble([]bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: 0x0800, SkipTrue: 5},
		bpf.LoadAbsolute{Off: off1, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: addr, SkipTrue: 2},
		bpf.LoadAbsolute{Off: off2, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: addr, SkipTrue: 1},
		bpf.RetConstant{Val: 65535},
		bpf.RetConstant{Val: 0},
	})
}
