package processor

import (
	"sort"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// SourceCount is one entry of a top-talkers list.
type SourceCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// TrafficStats summarizes a snapshot for the dashboard.
type TrafficStats struct {
	Protocols  map[string]int `json:"protocols"`
	TopSources []SourceCount  `json:"top_sources"`
}

// Summarize computes the protocol distribution and the top n source
// addresses from a snapshot. It works on the snapshot copy, so it takes no
// locks and never delays the capture loop.
func Summarize(records []*models.PacketRecord, n int) TrafficStats {
	protocols := make(map[string]int)
	sources := make(map[string]int)
	for _, rec := range records {
		protocols[rec.Protocol]++
		if rec.SrcIP != "" {
			sources[rec.SrcIP]++
		}
	}

	top := make([]SourceCount, 0, len(sources))
	for ip, count := range sources {
		top = append(top, SourceCount{IP: ip, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].IP < top[j].IP
	})
	if n > 0 && len(top) > n {
		top = top[:n]
	}

	return TrafficStats{Protocols: protocols, TopSources: top}
}
