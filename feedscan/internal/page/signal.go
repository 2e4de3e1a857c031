package page

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
)

// Op is the kind of signal the injected script sends.
type Op string

const (
	OpToggle   Op = "toggle"   // button clicked or form submitted; Value is the input text
	OpNavigate Op = "navigate" // SPA URL change; Value is the new URL
	OpLoad     Op = "load"     // full document load; Value is the URL
	OpReady    Op = "ready"    // script installed in an already loaded document
	OpLog      Op = "log"      // unexpected markup; Value is the message
)

// Signal is one binding call from the page.
type Signal struct {
	Op    Op     `json:"op"`
	Value string `json:"value"`
}

// ParseSignal decodes a binding payload.
func ParseSignal(payload string) (Signal, error) {
	var s Signal
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return s, fmt.Errorf("page: parse signal: %w", err)
	}
	switch s.Op {
	case OpToggle, OpNavigate, OpLoad, OpReady, OpLog:
		return s, nil
	}
	return s, fmt.Errorf("page: unknown signal op %q", s.Op)
}

// Listen calls fn for every signal until ctx is cancelled. It blocks.
func (p *Page) Listen(ctx context.Context, fn func(Signal)) {
	p.rod.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		s, err := ParseSignal(e.Payload)
		if err != nil {
			p.logger.Warn("page: bad binding payload", "error", err)
			return
		}
		if s.Op == OpLog {
			p.logger.Error("page: script reported", "message", s.Value)
			return
		}
		fn(s)
	})()
}
