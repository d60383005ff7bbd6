package scenario

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/dop251/goja"
)

// DefaultOracleTimeout bounds a single reference program.
const DefaultOracleTimeout = 2 * time.Second

// Oracle runs a scenario's reference JavaScript in goja and checks the same
// expectation against it, so every bundled scenario is also validated against
// an independent engine.
type Oracle struct {
	Timeout time.Duration
}

// NewOracle creates an oracle; a zero timeout selects DefaultOracleTimeout.
func NewOracle(timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &Oracle{Timeout: timeout}
}

// Check evaluates s.JS. It returns the list of expectations goja disagrees
// with, or an error when the program could not run to completion.
func (o *Oracle) Check(ctx context.Context, s *Scenario) ([]string, error) {
	rt := goja.New()
	rt.SetMaxCallStackSize(1024)

	timer := time.NewTimer(o.Timeout)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-timer.C:
			rt.Interrupt("oracle timeout exceeded")
		case <-ctx.Done():
			rt.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := rt.RunString(s.JS)
	var jsErr *goja.Exception
	if err != nil {
		var ok bool
		if jsErr, ok = err.(*goja.Exception); !ok {
			return nil, err
		}
	}

	var out []string
	failf := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }
	exp := &s.Expect

	switch {
	case exp.Throws != nil:
		if jsErr == nil {
			failf("goja completed normally, want throw %s", exp.Throws)
		} else if !sameScalar(jsErr.Value(), exp.Throws) {
			failf("goja threw %s, want %s", jsErr.Value(), exp.Throws)
		}
	case exp.Error != "":
		want := jsErrorName(exp.Error)
		if jsErr == nil {
			failf("goja completed normally, want %s", want)
		} else if got := errorName(jsErr.Value()); got != want {
			failf("goja threw %s, want %s", got, want)
		}
	case jsErr != nil:
		failf("goja threw %s", jsErr.Value())
	}
	if jsErr != nil {
		return out, nil
	}

	if exp.Result != nil && !sameScalar(val, exp.Result) {
		failf("goja result = %s, want %s", val, exp.Result)
	}
	if exp.Keys != nil {
		got, err := reflectOwnKeys(rt, val)
		if err != nil {
			return out, err
		}
		if !slices.Equal(got, exp.Keys) {
			failf("goja result keys = %v, want %v", got, exp.Keys)
		}
	}
	if exp.TargetKeys != nil {
		if target := rt.Get("target"); target != nil && !goja.IsUndefined(target) {
			got, err := reflectOwnKeys(rt, target)
			if err != nil {
				return out, err
			}
			if !slices.Equal(got, exp.TargetKeys) {
				failf("goja target keys = %v, want %v", got, exp.TargetKeys)
			}
		}
	}
	if calls := rt.Get("calls"); calls != nil && !goja.IsUndefined(calls) && len(exp.Calls) > 0 {
		obj := calls.ToObject(rt)
		names := make([]string, 0, len(exp.Calls))
		for name := range exp.Calls {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var got int64
			if v := obj.Get(name); v != nil && !goja.IsUndefined(v) {
				got = v.ToInteger()
			}
			if got != int64(exp.Calls[name]) {
				failf("goja %s trap called %d times, want %d", name, got, exp.Calls[name])
			}
		}
	}
	return out, nil
}

func reflectOwnKeys(rt *goja.Runtime, v goja.Value) ([]string, error) {
	ownKeys, ok := goja.AssertFunction(rt.Get("Reflect").ToObject(rt).Get("ownKeys"))
	if !ok {
		return nil, fmt.Errorf("goja: Reflect.ownKeys is not callable")
	}
	keys, err := ownKeys(goja.Undefined(), v)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys.Export().([]interface{}) {
		names = append(names, fmt.Sprint(k))
	}
	return names, nil
}

// sameScalar compares a goja value with a scalar expectation. Non-scalar
// expectations never match.
func sameScalar(v goja.Value, want *ValueSpec) bool {
	if want.Kind == ValueRef && want.Name == "undefined" {
		return goja.IsUndefined(v)
	}
	if want.Kind != ValueScalar {
		return false
	}
	switch w := want.Scalar.(type) {
	case nil:
		return goja.IsNull(v)
	case bool:
		b, ok := v.Export().(bool)
		return ok && b == w
	case float64:
		switch x := v.Export().(type) {
		case int64:
			return float64(x) == w
		case float64:
			return x == w
		}
		return false
	case string:
		s, ok := v.Export().(string)
		return ok && s == w
	}
	return false
}

// jsErrorName maps an engine error kind to the constructor name a standard
// engine throws for it.
func jsErrorName(kind string) string {
	if kind == "RangeError" {
		return "RangeError"
	}
	return "TypeError"
}

func errorName(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if name := obj.Get("name"); name != nil {
		return name.String()
	}
	return obj.String()
}
