// Package alert evaluates user-defined rules against packet records and
// keeps a bounded history of fired alerts.
package alert

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// Rule decides whether a record should fire an alert. Implementations must
// not mutate the record.
type Rule interface {
	Matches(rec *models.PacketRecord) bool
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(rec *models.PacketRecord) bool

// Matches implements Rule.
func (f RuleFunc) Matches(rec *models.PacketRecord) bool { return f(rec) }

// RuleSpec is a declarative rule descriptor, typically loaded from the
// config file or posted by the dashboard. Empty/zero conditions are not
// applied; the set conditions are ANDed.
type RuleSpec struct {
	Name     string `mapstructure:"name" json:"name"`
	Message  string `mapstructure:"message" json:"message"`
	Protocol string `mapstructure:"protocol" json:"protocol,omitempty"`
	MinSize  int    `mapstructure:"min_size" json:"min_size,omitempty"`
	SrcPort  uint16 `mapstructure:"src_port" json:"src_port,omitempty"`
	DstPort  uint16 `mapstructure:"dst_port" json:"dst_port,omitempty"`
}

// ParseSpec decodes a descriptor from a generic map, as delivered by JSON
// request bodies or config fragments.
func ParseSpec(raw map[string]interface{}) (RuleSpec, error) {
	var spec RuleSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &spec,
		ErrorUnused: true,
	})
	if err != nil {
		return RuleSpec{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return RuleSpec{}, fmt.Errorf("invalid rule descriptor: %w", err)
	}
	return spec, nil
}

// Compile turns the descriptor into an executable Rule.
func (s RuleSpec) Compile() (Rule, error) {
	if s.Message == "" {
		return nil, fmt.Errorf("rule %q: message is required", s.Name)
	}
	if s.Protocol == "" && s.MinSize <= 0 && s.SrcPort == 0 && s.DstPort == 0 {
		return nil, fmt.Errorf("rule %q: at least one condition is required", s.Name)
	}

	proto := strings.ToUpper(s.Protocol)
	return RuleFunc(func(rec *models.PacketRecord) bool {
		if proto != "" && rec.Protocol != proto {
			return false
		}
		if s.MinSize > 0 && rec.Size <= s.MinSize {
			return false
		}
		if s.SrcPort != 0 && (rec.Transport == nil || rec.Transport.SrcPort != s.SrcPort) {
			return false
		}
		if s.DstPort != 0 && (rec.Transport == nil || rec.Transport.DstPort != s.DstPort) {
			return false
		}
		return true
	}), nil
}
