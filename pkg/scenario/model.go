package scenario

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"exotic/pkg/errors"
	"exotic/pkg/vm"
)

// Scenario is one probe: a proxy set-up, an operation applied to it, and the
// outcome the engine must produce.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Proxy       ProxySpec `yaml:"proxy"`
	Operation   Operation `yaml:"operation"`
	Expect      Expect    `yaml:"expect"`
	// JS is an optional reference program for the goja oracle. Its completion
	// value is the result; it may bind the globals `target` and `calls`.
	JS string `yaml:"js"`

	Pos errors.Position `yaml:"-"`
}

// ProxySpec describes a proxy: its target and the behavior of each trap.
type ProxySpec struct {
	Target  TargetSpec `yaml:"target"`
	Handler Handler    `yaml:"handler"`
}

// Target kinds.
const (
	TargetObject      = "object"
	TargetFunction    = "function"
	TargetConstructor = "constructor"
	TargetArray       = "array"
)

// TargetSpec describes the proxy target.
type TargetSpec struct {
	Kind string `yaml:"kind"`
	// Properties are plain data properties, defined in order.
	Properties Props `yaml:"properties"`
	// Fixed properties are enumerable but neither writable nor configurable.
	Fixed      Props `yaml:"fixed"`
	Extensible *bool `yaml:"extensible"`

	Pos errors.Position `yaml:"-"`
}

func (t *TargetSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain TargetSpec
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.Pos = posOf(node)
	switch t.Kind {
	case "":
		t.Kind = TargetObject
	case TargetObject, TargetFunction, TargetConstructor, TargetArray:
	default:
		return errors.NewScenarioError(t.Pos, "unknown target kind %q", t.Kind)
	}
	return nil
}

// Prop is one named value of an ordered property list.
type Prop struct {
	Key   string
	Value ValueSpec
}

// Props keeps YAML mapping order, which becomes property creation order.
type Props []Prop

func (p *Props) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.NewScenarioError(posOf(node), "expected a mapping of properties")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value ValueSpec
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		*p = append(*p, Prop{Key: node.Content[i].Value, Value: value})
	}
	return nil
}

// TrapBehavior binds a behavior to one trap.
type TrapBehavior struct {
	Trap vm.Trap
	Behavior
}

// Handler is the ordered list of installed traps.
type Handler []TrapBehavior

func (h *Handler) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.NewScenarioError(posOf(node), "handler must map trap names to behaviors")
	}
	seen := make(map[vm.Trap]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		trap, ok := vm.ParseTrap(keyNode.Value)
		if !ok {
			return errors.NewScenarioError(posOf(keyNode), "unknown trap %q", keyNode.Value)
		}
		if seen[trap] {
			return errors.NewScenarioError(posOf(keyNode), "trap %q listed twice", keyNode.Value)
		}
		seen[trap] = true
		var b Behavior
		if err := node.Content[i+1].Decode(&b); err != nil {
			return err
		}
		*h = append(*h, TrapBehavior{Trap: trap, Behavior: b})
	}
	return nil
}

// Behavior is what a trap does when called. Without FailOn exactly one of
// Forward, Throw and Return is set. With FailOn, calls before the n-th one
// forward (or return Return) and every later call throws Throw.
type Behavior struct {
	Forward bool
	Throw   *ValueSpec
	Return  *ValueSpec
	FailOn  int

	Pos errors.Position
}

func (b *Behavior) UnmarshalYAML(node *yaml.Node) error {
	b.Pos = posOf(node)
	if node.Kind == yaml.ScalarNode {
		if node.Value != "forward" {
			return errors.NewScenarioError(b.Pos, "unknown trap behavior %q", node.Value)
		}
		b.Forward = true
		return nil
	}

	var raw struct {
		Forward bool       `yaml:"forward"`
		Throw   *ValueSpec `yaml:"throw"`
		Return  *ValueSpec `yaml:"return"`
		FailOn  int        `yaml:"failOn"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	b.Forward, b.Throw, b.Return, b.FailOn = raw.Forward, raw.Throw, raw.Return, raw.FailOn

	if b.FailOn < 0 {
		return errors.NewScenarioError(b.Pos, "failOn must be positive")
	}
	if b.FailOn > 0 {
		if b.Throw == nil {
			return errors.NewScenarioError(b.Pos, "failOn needs a throw value")
		}
		if b.Return == nil {
			b.Forward = true
		}
		return nil
	}
	set := 0
	for _, present := range []bool{b.Forward, b.Throw != nil, b.Return != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return errors.NewScenarioError(b.Pos, "trap behavior needs exactly one of forward, throw, return")
	}
	return nil
}

// ValueKind tells how a ValueSpec is materialized.
type ValueKind uint8

const (
	ValueScalar ValueKind = iota // null, boolean, number or string
	ValueRef                     // {ref: proxy|target|self|undefined}
	ValueGlobal                  // {global: Reflect.defineProperty}
	ValueSymbol                  // {symbol: description}
	ValueProxy                   // {proxy: ProxySpec}
	ValueArray                   // [a, b]
	ValueObject                  // {k: v}
)

var refNames = map[string]bool{"proxy": true, "target": true, "self": true, "undefined": true}

// ValueSpec is a YAML description of an engine value. A mapping with the single
// key ref, global, symbol or proxy is special; any other mapping is an ordinary
// object literal.
type ValueSpec struct {
	Kind ValueKind
	// Scalar is nil (null), bool, float64 or string.
	Scalar any
	Name   string // ref name, global path or symbol description
	Proxy  *ProxySpec
	Items  []ValueSpec
	Props  Props

	Pos errors.Position
}

func (v *ValueSpec) UnmarshalYAML(node *yaml.Node) error {
	v.Pos = posOf(node)
	switch node.Kind {
	case yaml.ScalarNode:
		v.Kind = ValueScalar
		return v.decodeScalar(node)
	case yaml.SequenceNode:
		v.Kind = ValueArray
		return node.Decode(&v.Items)
	case yaml.MappingNode:
		if len(node.Content) == 2 {
			key, val := node.Content[0].Value, node.Content[1]
			switch key {
			case "ref":
				if !refNames[val.Value] {
					return errors.NewScenarioError(posOf(val), "unknown ref %q", val.Value)
				}
				v.Kind, v.Name = ValueRef, val.Value
				return nil
			case "global":
				v.Kind, v.Name = ValueGlobal, val.Value
				return nil
			case "symbol":
				v.Kind, v.Name = ValueSymbol, val.Value
				return nil
			case "proxy":
				v.Kind, v.Proxy = ValueProxy, &ProxySpec{}
				return val.Decode(v.Proxy)
			}
		}
		v.Kind = ValueObject
		return node.Decode(&v.Props)
	case yaml.AliasNode:
		return v.UnmarshalYAML(node.Alias)
	default:
		return errors.NewScenarioError(v.Pos, "unsupported value")
	}
}

func (v *ValueSpec) decodeScalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		v.Scalar = nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		v.Scalar = b
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v.Scalar = f
	case "!!str":
		v.Scalar = node.Value
	default:
		return errors.NewScenarioError(v.Pos, "unsupported scalar tag %s", node.ShortTag())
	}
	return nil
}

func (v ValueSpec) String() string {
	switch v.Kind {
	case ValueScalar:
		if v.Scalar == nil {
			return "null"
		}
		if s, ok := v.Scalar.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprint(v.Scalar)
	case ValueRef:
		return "<" + v.Name + ">"
	case ValueGlobal:
		return v.Name
	case ValueSymbol:
		return "Symbol(" + v.Name + ")"
	case ValueProxy:
		return "[Proxy]"
	case ValueArray:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		parts := make([]string, len(v.Props))
		for i, p := range v.Props {
			parts[i] = p.Key + ": " + p.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}

// Operation kinds.
const (
	OpArrayOf   = "array-of"  // Array.of.call(on, ...args)
	OpConstruct = "construct" // new on(...args), or Construct(on, args, newTarget)
	OpCall      = "call"      // on.call(this, ...args)
	OpReflect   = "reflect"   // Reflect[method](on, ...args)
)

var reflectMethods = func() map[string]bool {
	m := make(map[string]bool)
	for _, t := range vm.Traps() {
		m[t.String()] = true
	}
	return m
}()

// Operation is the action applied to the subject, which defaults to the proxy.
type Operation struct {
	Kind      string      `yaml:"kind"`
	Method    string      `yaml:"method"`
	On        *ValueSpec  `yaml:"on"`
	This      *ValueSpec  `yaml:"this"`
	Args      []ValueSpec `yaml:"args"`
	NewTarget *ValueSpec  `yaml:"newTarget"`

	Pos errors.Position `yaml:"-"`
}

func (o *Operation) UnmarshalYAML(node *yaml.Node) error {
	type plain Operation
	if err := node.Decode((*plain)(o)); err != nil {
		return err
	}
	o.Pos = posOf(node)
	switch o.Kind {
	case OpArrayOf, OpConstruct, OpCall:
		if o.Method != "" {
			return errors.NewScenarioError(o.Pos, "method only applies to reflect operations")
		}
	case OpReflect:
		if !reflectMethods[o.Method] {
			return errors.NewScenarioError(o.Pos, "unknown Reflect method %q", o.Method)
		}
	default:
		return errors.NewScenarioError(o.Pos, "unknown operation kind %q", o.Kind)
	}
	if o.NewTarget != nil && o.Kind != OpConstruct {
		return errors.NewScenarioError(o.NewTarget.Pos, "newTarget only applies to construct")
	}
	return nil
}

var errorKinds = map[string]vm.ErrorKind{
	"TypeError":          vm.KindTypeError,
	"RangeError":         vm.KindRangeError,
	"NotConstructible":   vm.KindNotConstructible,
	"InvariantViolation": vm.KindInvariantViolation,
}

// Expect lists the checks applied after the operation. Throws and Error are
// mutually exclusive; with neither, the operation must complete normally.
type Expect struct {
	// Throws is the value a trap threw; it must come back as the same exception.
	Throws *ValueSpec `yaml:"throws"`
	// Error is an engine-raised error kind, with an optional ECMAScript regexp
	// matched against its message.
	Error   string `yaml:"error"`
	Message string `yaml:"message"`
	// Result compares the operation result with SameValue.
	Result *ValueSpec `yaml:"result"`
	// Keys and TargetKeys are the own keys of the result and of the proxy target.
	Keys       []string       `yaml:"keys"`
	TargetKeys []string       `yaml:"targetKeys"`
	Calls      map[string]int `yaml:"calls"`

	Pos       errors.Position `yaml:"-"`
	kind      vm.ErrorKind
	messageRe *regexp2.Regexp
}

func (e *Expect) UnmarshalYAML(node *yaml.Node) error {
	type plain Expect
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}
	e.Pos = posOf(node)
	if e.Throws != nil && e.Error != "" {
		return errors.NewScenarioError(e.Pos, "throws and error are mutually exclusive")
	}
	if e.Error != "" {
		kind, ok := errorKinds[e.Error]
		if !ok {
			return errors.NewScenarioError(e.Pos, "unknown error kind %q", e.Error)
		}
		e.kind = kind
	}
	if e.Message != "" {
		if e.Error == "" {
			return errors.NewScenarioError(e.Pos, "message needs an error kind")
		}
		re, err := regexp2.Compile(e.Message, regexp2.ECMAScript)
		if err != nil {
			return errors.NewScenarioError(e.Pos, "invalid message pattern: %v", err).CausedBy(err)
		}
		e.messageRe = re
	}
	for name, n := range e.Calls {
		if _, ok := vm.ParseTrap(name); !ok {
			return errors.NewScenarioError(e.Pos, "calls: unknown trap %q", name)
		}
		if n < 0 {
			return errors.NewScenarioError(e.Pos, "calls: negative count for %q", name)
		}
	}
	return nil
}

// ExpectsFailure reports whether the operation is expected to raise.
func (e *Expect) ExpectsFailure() bool { return e.Throws != nil || e.Error != "" }

func posOf(node *yaml.Node) errors.Position {
	return errors.Position{Line: node.Line, Column: node.Column}
}
