package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolNameWellKnown(t *testing.T) {
	assert.Equal(t, "ICMP", ProtocolName(1))
	assert.Equal(t, "TCP", ProtocolName(6))
	assert.Equal(t, "UDP", ProtocolName(17))
}

func TestProtocolNameFallbackKeepsValue(t *testing.T) {
	assert.Equal(t, "OTHER(2)", ProtocolName(2))
	assert.Equal(t, "OTHER(89)", ProtocolName(89))
	assert.Equal(t, "OTHER(255)", ProtocolName(255))

	// Distinct inputs must produce distinct labels.
	seen := make(map[string]bool)
	for n := 0; n < 256; n++ {
		name := ProtocolName(n)
		assert.False(t, seen[name], "duplicate label %s for %d", name, n)
		seen[name] = true
	}
}
