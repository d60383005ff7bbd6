package scenario

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"exotic/pkg/builtins"
	"exotic/pkg/metrics"
	"exotic/pkg/vm"
)

// Result is the outcome of one scenario.
type Result struct {
	Name   string
	Passed bool
	// Failures lists every expectation the engine missed.
	Failures []string
	// OracleFailures lists where goja disagreed with the expectation.
	OracleFailures []string
	Calls          map[string]int
	// Err is the error the operation returned, if any.
	Err error
}

func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Runner executes scenarios, each on a fresh runtime.
type Runner struct {
	maxCallDepth int
	logger       *zap.Logger
	metrics      *metrics.TrapMetrics
	oracle       *Oracle
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to every runtime.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records trap dispatches and scenario results into m.
func WithMetrics(m *metrics.TrapMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithOracle cross-checks scenarios carrying JS against goja.
func WithOracle(o *Oracle) Option {
	return func(r *Runner) { r.oracle = o }
}

// WithMaxCallDepth sets the runtime call-depth limit.
func WithMaxCallDepth(depth int) Option {
	return func(r *Runner) { r.maxCallDepth = depth }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes s. It returns an error only when the scenario could not be set
// up; expectation mismatches are reported in the Result.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := vm.Config{MaxCallDepth: r.maxCallDepth, Logger: r.logger.With(zap.String("scenario", s.Name))}
	if r.metrics != nil {
		cfg.Observer = r.metrics
	}
	machine, err := builtins.NewRuntime(cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	w := newWorld(machine)
	if err := w.setup(&s.Proxy); err != nil {
		return nil, fmt.Errorf("scenario %s: setup: %w", s.Name, err)
	}

	res := &Result{Name: s.Name, Calls: w.calls}
	value, opErr := w.perform(&s.Operation)
	res.Err = opErr
	w.check(&s.Expect, value, opErr, res)

	if r.oracle != nil && s.JS != "" {
		mismatches, err := r.oracle.Check(ctx, s)
		if err != nil {
			res.OracleFailures = append(res.OracleFailures, "oracle: "+err.Error())
		}
		res.OracleFailures = append(res.OracleFailures, mismatches...)
	}

	res.Passed = len(res.Failures) == 0 && len(res.OracleFailures) == 0
	if r.metrics != nil {
		r.metrics.RecordScenario(res.Passed)
	}
	r.logger.Debug("scenario finished",
		zap.String("scenario", s.Name),
		zap.Bool("passed", res.Passed),
		zap.Any("calls", res.Calls),
		zap.Error(opErr))
	return res, nil
}

// RunAll runs scenarios in order, stopping early only when ctx is done.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		res, err := r.Run(ctx, s)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (w *world) perform(op *Operation) (vm.Value, error) {
	subject := w.proxy
	if op.On != nil {
		var err error
		if subject, err = w.value(op.On, vm.Undefined); err != nil {
			return vm.Undefined, err
		}
	}
	args, err := w.values(op.Args)
	if err != nil {
		return vm.Undefined, err
	}

	switch op.Kind {
	case OpArrayOf:
		arrayOf, err := w.global("Array.of")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Call(w.machine, arrayOf, subject, args)
	case OpConstruct:
		if op.NewTarget == nil {
			return vm.EvaluateConstruction(w.machine, subject, args)
		}
		newTarget, err := w.value(op.NewTarget, vm.Undefined)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Construct(w.machine, subject, args, newTarget)
	case OpCall:
		this := vm.Undefined
		if op.This != nil {
			if this, err = w.value(op.This, vm.Undefined); err != nil {
				return vm.Undefined, err
			}
		}
		return vm.Call(w.machine, subject, this, args)
	default:
		method, err := w.global("Reflect." + op.Method)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Call(w.machine, method, vm.Undefined, append([]vm.Value{subject}, args...))
	}
}

func (w *world) values(specs []ValueSpec) ([]vm.Value, error) {
	out := make([]vm.Value, len(specs))
	for i := range specs {
		v, err := w.value(&specs[i], vm.Undefined)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (w *world) check(exp *Expect, value vm.Value, err error, res *Result) {
	ex, isException := vm.AsException(err)
	switch {
	case exp.Throws != nil:
		want, verr := w.value(exp.Throws, vm.Undefined)
		if verr != nil {
			res.fail("building expected exception: %v", verr)
			break
		}
		if !isException || ex.Kind() != vm.KindThrow {
			res.fail("expected the trap's exception %s, got %v", want.Inspect(), describeErr(err))
			break
		}
		if !vm.SameValue(ex.Value, want) {
			res.fail("thrown value = %s, want %s", ex.Value.Inspect(), want.Inspect())
		}
		if err != w.thrown {
			res.fail("the trap's exception was not propagated unchanged")
		}
	case exp.Error != "":
		if !isException {
			res.fail("expected %s, got %v", exp.Error, describeErr(err))
			break
		}
		if ex.Kind() != exp.kind {
			res.fail("error kind = %s, want %s (%v)", ex.Kind(), exp.Error, err)
		}
		if exp.messageRe != nil {
			msg := exceptionMessage(ex)
			if ok, _ := exp.messageRe.MatchString(msg); !ok {
				res.fail("message %q does not match /%s/", msg, exp.Message)
			}
		}
	case err != nil:
		res.fail("unexpected failure: %v", err)
	}

	if exp.Result != nil && err == nil {
		want, verr := w.value(exp.Result, vm.Undefined)
		if verr != nil {
			res.fail("building expected result: %v", verr)
		} else if !vm.SameValue(value, want) {
			res.fail("result = %s, want %s", value.Inspect(), want.Inspect())
		}
	}
	if exp.Keys != nil && err == nil {
		if !value.IsObject() {
			res.fail("result %s has no own keys", value.Inspect())
		} else if got, kerr := ownKeyNames(value); kerr != nil {
			res.fail("reading result keys: %v", kerr)
		} else if !slices.Equal(got, exp.Keys) {
			res.fail("result keys = %v, want %v", got, exp.Keys)
		}
	}
	if exp.TargetKeys != nil {
		if got, kerr := ownKeyNames(w.target); kerr != nil {
			res.fail("reading target keys: %v", kerr)
		} else if !slices.Equal(got, exp.TargetKeys) {
			res.fail("target keys = %v, want %v", got, exp.TargetKeys)
		}
	}

	traps := make([]string, 0, len(exp.Calls))
	for name := range exp.Calls {
		traps = append(traps, name)
	}
	sort.Strings(traps)
	for _, name := range traps {
		if got := w.calls[name]; got != exp.Calls[name] {
			res.fail("%s trap called %d times, want %d", name, got, exp.Calls[name])
		}
	}
}

// exceptionMessage reads the message data property of an error object.
func exceptionMessage(ex *vm.Exception) string {
	if ex.Value.IsObject() {
		desc, ok, err := ex.Value.AsObject().GetOwnProperty(vm.NewStringKey("message"))
		if err == nil && ok && desc.HasValue && desc.Value.IsString() {
			return desc.Value.AsString()
		}
	}
	return ex.Value.Inspect()
}

func describeErr(err error) string {
	if err == nil {
		return "normal completion"
	}
	return err.Error()
}
