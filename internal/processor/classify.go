package processor

import "fmt"

// Well-known IP protocol numbers.
const (
	protoICMP = 1
	protoTCP  = 6
	protoUDP  = 17
)

// ProtocolName maps an IP protocol number to a display name. Unknown values
// keep the number in the label so no information is lost.
func ProtocolName(proto int) string {
	switch proto {
	case protoICMP:
		return "ICMP"
	case protoTCP:
		return "TCP"
	case protoUDP:
		return "UDP"
	default:
		return fmt.Sprintf("OTHER(%d)", proto)
	}
}
