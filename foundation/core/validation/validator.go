// File: validator.go
// Title: Plan Orchestrator
// Description: Validator drives one plan: build raw steps, normalize, bind
//              against the registry, gate and dispatch every step in order,
//              then return clean values or a field report.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Initial implementation

package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/log"
)

// MsgRequired is the message key of the default required message
const MsgRequired = "validation.required"

// PlanFunc builds the raw plan for one call. It must be a pure function
// of input and refs.
type PlanFunc func(input, refs map[string]any) ([]RawStep, error)

// Static returns a PlanFunc that always yields steps
func Static(steps ...RawStep) PlanFunc {
	return func(map[string]any, map[string]any) ([]RawStep, error) {
		return steps, nil
	}
}

// Messages resolves message keys for the locale carried by ctx
type Messages interface {
	Text(ctx context.Context, key, fallback string, data map[string]interface{}) string
}

// Observer is notified about dispatch decisions and finished calls
type Observer interface {
	StepFinished(form string, method CapabilityID, dispatched bool)
	CallFinished(form string, outcome *Outcome, err error, elapsed time.Duration)
}

// Options configures a Validator
type Options struct {
	Name            string // form name used in logs and metrics
	Logger          *log.Logger
	Observer        Observer
	Messages        Messages // source of the default required message
	CompositeFields []string // prefixes collapsed into one report entry
	BlankIsMissing  bool     // whitespace-only strings count as absent
}

// DefaultOptions returns the options used for form submissions
func DefaultOptions() Options {
	return Options{BlankIsMissing: true}
}

// Validator executes a plan against input. It holds no per-call state and
// is safe for concurrent use.
type Validator struct {
	registry *Registry
	plan     PlanFunc
	opts     Options
	logger   *log.Logger
}

// New creates a validator for plan bound to registry
func New(registry *Registry, plan PlanFunc, opts Options) *Validator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithName("validation")
	if registry == nil {
		registry = NewRegistry(logger)
	}
	if opts.Name != "" {
		logger = logger.WithField("form", opts.Name)
	}

	return &Validator{
		registry: registry,
		plan:     plan,
		opts:     opts,
		logger:   logger,
	}
}

// Name returns the form name
func (v *Validator) Name() string {
	return v.opts.Name
}

// CompositeFields returns the composite prefixes of the report
func (v *Validator) CompositeFields() []string {
	return append([]string(nil), v.opts.CompositeFields...)
}

// Steps builds and normalizes the plan for input and refs
func (v *Validator) Steps(ctx context.Context, input, refs map[string]any) ([]Step, error) {
	raw, err := v.buildPlan(input, refs)
	if err != nil {
		return nil, err
	}
	return normalize(raw, v.requiredMsg(ctx))
}

// Check builds, normalizes and binds the plan without running it
func (v *Validator) Check(ctx context.Context, input, refs map[string]any) error {
	steps, err := v.Steps(ctx, input, refs)
	if err != nil {
		return err
	}
	_, err = v.registry.Bind(steps)
	return err
}

// ValidateData runs the plan against input. User input problems come back
// as an Err outcome; a malformed plan, an unknown capability, a panicking
// capability or a canceled ctx come back as error.
func (v *Validator) ValidateData(ctx context.Context, input, refs map[string]any) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := log.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := v.logger.WithRequestID(requestID)

	timer := logger.StartTimer("validate").WithLevel(log.LevelInfo)
	start := time.Now()

	outcome, err := v.run(ctx, logger, input, refs)

	if v.opts.Observer != nil {
		v.opts.Observer.CallFinished(v.opts.Name, outcome, err, time.Since(start))
	}

	switch {
	case err != nil:
		timer.StopWithError(err)
	case outcome.Ok():
		timer.Stop(log.Fields{"outcome": "ok", "values": len(outcome.Values())})
	default:
		timer.Stop(log.Fields{"outcome": "invalid", "fields": outcome.Report().Fields()})
	}
	return outcome, err
}

func (v *Validator) run(ctx context.Context, logger *log.Logger, input, refs map[string]any) (*Outcome, error) {
	steps, err := v.Steps(ctx, input, refs)
	if err != nil {
		return nil, err
	}

	capabilities, err := v.registry.Bind(steps)
	if err != nil {
		return nil, err
	}

	res := NewResult()
	reader := inputReader{input: input, blankIsMissing: v.opts.BlankIsMissing}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, canceled(err, i)
		}

		if gate(res, step, reader) {
			logger.Debug("step skipped", log.Fields{"step": i, "field": step.Field, "capability": string(step.Method)})
			v.observeStep(step, false)
			continue
		}

		call := buildCall(step, reader)
		if err := invoke(ctx, capabilities[i], res, call, step, i); err != nil {
			return nil, err
		}
		logger.Debug("step dispatched", log.Fields{"step": i, "field": step.Field, "capability": string(step.Method)})
		logger.Trace("step arguments", log.Fields{"step": i, "args": call.Args})
		v.observeStep(step, true)
	}

	if res.HasErrors() {
		return Err(NewReport(res, v.opts.CompositeFields)), nil
	}

	values := make(map[string]any, len(steps))
	for _, step := range steps {
		if _, done := values[step.Field]; done {
			continue
		}
		value, _ := res.Value(step.Field)
		values[step.Field] = value
	}
	return Ok(values), nil
}

func (v *Validator) buildPlan(input, refs map[string]any) (raw []RawStep, err error) {
	if v.plan == nil {
		return nil, mdwerror.New("validator has no plan").
			WithCode(mdwerror.CodePlanInvalid).
			WithOperation("validation.ValidateData").
			WithDetail("form", v.opts.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = mdwerror.Newf("plan function panicked: %v", r).
				WithCode(mdwerror.CodePlanInvalid).
				WithOperation("validation.ValidateData").
				WithDetail("form", v.opts.Name)
		}
	}()

	raw, err = v.plan(input, refs)
	if err != nil {
		var mdwErr *mdwerror.Error
		if errors.As(err, &mdwErr) {
			return nil, err
		}
		return nil, mdwerror.Wrap(err, "plan construction failed").
			WithCode(mdwerror.CodePlanInvalid).
			WithOperation("validation.ValidateData").
			WithDetail("form", v.opts.Name)
	}
	return raw, nil
}

func (v *Validator) requiredMsg(ctx context.Context) string {
	if v.opts.Messages == nil {
		return DefaultRequiredMsg
	}
	return v.opts.Messages.Text(ctx, MsgRequired, DefaultRequiredMsg, nil)
}

func (v *Validator) observeStep(step Step, dispatched bool) {
	if v.opts.Observer != nil {
		v.opts.Observer.StepFinished(v.opts.Name, step.Method, dispatched)
	}
}

func invoke(ctx context.Context, capability Capability, res *Result, call Call, step Step, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = mdwerror.New(fmt.Sprintf("capability %s panicked: %v", step.Method, r)).
				WithCode(mdwerror.CodeCapabilityFailed).
				WithOperation("validation.ValidateData").
				WithDetail("step", index).
				WithDetail("field", step.Field).
				WithDetail("capability", string(step.Method))
		}
	}()

	capability(ctx, res, call)
	return nil
}

func canceled(err error, index int) error {
	code := mdwerror.CodeCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		code = mdwerror.CodeTimeout
	}
	return mdwerror.Wrap(err, "validation aborted").
		WithCode(code).
		WithOperation("validation.ValidateData").
		WithDetail("step", index)
}
