package alert

import (
	"sync"
	"time"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/log"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/metrics"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// Event is one fired alert.
type Event struct {
	Rule    string               `json:"rule,omitempty"`
	Message string               `json:"message"`
	Record  *models.PacketRecord `json:"record"`
	At      time.Time            `json:"at"`
}

// Sink receives fired events for delivery outside the process. Publish must
// not block the caller.
type Sink interface {
	Publish(ev Event)
	Close() error
}

const defaultMaxPending = 1000

type binding struct {
	name    string
	rule    Rule
	message string
}

// Engine holds the registered rule set. Rules are append-only during a
// session; evaluation happens synchronously on the capture goroutine, so
// alerts for an earlier record always precede alerts for a later one.
type Engine struct {
	mu    sync.RWMutex
	rules []binding

	pendingMu  sync.Mutex
	pending    []Event
	maxPending int

	sinks []Sink
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{maxPending: defaultMaxPending}
}

// Register appends a rule with its alert message.
func (e *Engine) Register(name string, rule Rule, message string) {
	e.mu.Lock()
	e.rules = append(e.rules, binding{name: name, rule: rule, message: message})
	e.mu.Unlock()
}

// RegisterSpec compiles and registers a declarative rule descriptor.
func (e *Engine) RegisterSpec(spec RuleSpec) error {
	rule, err := spec.Compile()
	if err != nil {
		return err
	}
	e.Register(spec.Name, rule, spec.Message)
	return nil
}

// AddSink attaches a delivery sink for fired events. Must be called before
// evaluation starts.
func (e *Engine) AddSink(s Sink) {
	e.sinks = append(e.sinks, s)
}

// Evaluate runs every registered rule against rec in registration order. A
// failing rule is isolated: it is logged and the remaining rules still run.
func (e *Engine) Evaluate(rec *models.PacketRecord) {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, b := range rules {
		if !safeMatch(b, rec) {
			continue
		}
		ev := Event{Rule: b.name, Message: b.message, Record: rec, At: time.Now()}
		e.enqueue(ev)
		metrics.AlertsFiredTotal.WithLabelValues(b.name).Inc()
		log.GetLogger().WithFields(map[string]interface{}{
			"rule":   b.name,
			"source": rec.SrcIP,
		}).Warnf("Alert: %s", b.message)
		for _, s := range e.sinks {
			s.Publish(ev)
		}
	}
}

// RecentAlerts drains and returns the events fired since the previous call,
// oldest first.
func (e *Engine) RecentAlerts() []Event {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	out := e.pending
	e.pending = nil
	return out
}

func (e *Engine) enqueue(ev Event) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pending = append(e.pending, ev)
	if len(e.pending) > e.maxPending {
		// Drop the oldest unread events rather than grow without bound.
		e.pending = e.pending[len(e.pending)-e.maxPending:]
	}
}

func safeMatch(b binding, rec *models.PacketRecord) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			log.GetLogger().WithField("rule", b.name).
				Errorf("alert rule panicked during evaluation: %v", r)
		}
	}()
	return b.rule.Matches(rec)
}
