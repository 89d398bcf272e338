package player

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-moddelay/dsp/params"
	"github.com/cwbudde/algo-moddelay/dsp/stream"
)

// Action tells the playback loop what a key press asks for.
type Action int

const (
	ActionNone Action = iota
	ActionChanged
	ActionQuit
)

type binding struct {
	id   params.ID
	step float64
}

var bindings = map[byte]binding{
	'w': {params.DryWet, 0.05},
	's': {params.DryWet, -0.05},
	'f': {params.Feedback, 0.05},
	'v': {params.Feedback, -0.05},
	'r': {params.Rate, 0.5},
	'e': {params.Rate, -0.5},
	'd': {params.Depth, 0.05},
	'c': {params.Depth, -0.05},
	'p': {params.PhaseOffset, 0.05},
	'o': {params.PhaseOffset, -0.05},
	't': {params.DelayTime, 0.01},
	'g': {params.DelayTime, -0.01},
	'+': {params.Gain, 0.05},
	'-': {params.Gain, -0.05},
}

// Keys maps single key presses to parameter nudges on a registry.
type Keys struct {
	reg *params.Registry
	fx  *stream.Effect
}

// NewKeys binds keys to reg. fx may be nil, which disables bypass.
func NewKeys(reg *params.Registry, fx *stream.Effect) *Keys {
	return &Keys{reg: reg, fx: fx}
}

// Handle applies key k and returns the resulting action plus a status line.
func (k *Keys) Handle(key byte) (Action, string) {
	switch key {
	case 'q', 3: // ctrl-c arrives as a byte in raw mode
		return ActionQuit, "quit"
	case 'm':
		p := k.reg.Get(params.Type)
		if p == nil {
			return ActionNone, ""
		}
		p.Set(1 - p.Value())
		return ActionChanged, k.Status()
	case 'b':
		if k.fx == nil {
			return ActionNone, ""
		}
		k.fx.SetBypass(!k.fx.Bypassed())
		return ActionChanged, k.Status()
	}

	b, ok := bindings[key]
	if !ok {
		return ActionNone, ""
	}
	p := k.reg.Get(b.id)
	if p == nil {
		return ActionNone, ""
	}
	p.Set(p.Value() + b.step)
	return ActionChanged, k.Status()
}

// Status renders every parameter on one line.
func (k *Keys) Status() string {
	var sb strings.Builder
	for i, p := range k.reg.All() {
		if i > 0 {
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "%s=%s", p.Key, p.Format())
	}
	if k.fx != nil && k.fx.Bypassed() {
		sb.WriteString("  [bypass]")
	}
	return sb.String()
}

// Help lists the bindings that apply to the registry's variant.
func (k *Keys) Help() string {
	var keys []string
	for _, pair := range [][2]byte{{'w', 's'}, {'f', 'v'}, {'r', 'e'}, {'d', 'c'}, {'p', 'o'}, {'t', 'g'}, {'+', '-'}} {
		p := k.reg.Get(bindings[pair[0]].id)
		if p == nil {
			continue
		}
		keys = append(keys, fmt.Sprintf("%c/%c %s", pair[0], pair[1], p.Key))
	}
	if k.reg.Get(params.Type) != nil {
		keys = append(keys, "m mode")
	}
	if k.fx != nil {
		keys = append(keys, "b bypass")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, ", ")
}
