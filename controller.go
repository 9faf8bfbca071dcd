package actionize

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Options configures a Controller.
type Options[R any] struct {
	// OnSuccess runs after a submission whose action returned without error.
	OnSuccess func(result R)
	// OnError runs after a rejected submission, a failed ExecuteAction
	// validation, or a single-flight rejection.
	OnError func(err error)
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// SingleFlight rejects a submission while another one is in flight
	// instead of running both.
	SingleFlight bool
}

// FieldBinding binds one form field to a Controller.
type FieldBinding struct {
	Name     string
	Value    string
	OnChange func(ctx context.Context, value string)
	OnBlur   func(ctx context.Context)
}

// Snapshot is the read model handed to renderers. State is the committed
// result of the last Dispatch; Values are the live, uncommitted edits.
type Snapshot[R any] struct {
	State          R
	Values         map[string]string
	Errors         map[string]FieldError
	Touched        []string
	Pending        bool
	IsValid        bool
	ButtonDisabled bool
}

// Controller binds an object schema and an action to a live set of form
// fields, tracking values, per-field errors, touched fields and the pending
// flag of in-flight submissions.
type Controller[T, R any] struct {
	schema    ObjectSchema[T]
	action    Action[R]
	onSuccess func(R)
	onError   func(error)
	log       *slog.Logger
	single    bool

	transition *Transition

	mu      sync.Mutex
	state   R
	values  map[string]string
	errors  map[string]FieldError
	touched map[string]struct{}

	subMu   sync.Mutex
	subs    []subscriber[R]
	nextSub int

	// notifyMu serializes snapshot capture and delivery.
	notifyMu sync.Mutex
}

type subscriber[R any] struct {
	id int
	fn func(Snapshot[R])
}

type submitMode int

const (
	// submitForm clears field errors and leaves the committed state alone.
	submitForm submitMode = iota
	// submitDispatch commits the result and leaves field errors alone.
	submitDispatch
)

// New creates a Controller for cfg.
func New[T, R any](cfg Config[T, R], opts Options[R]) (*Controller[T, R], error) {
	if cfg.Schema == nil {
		return nil, ErrNilSchema
	}
	if cfg.Action == nil {
		return nil, ErrNilAction
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller[T, R]{
		schema:    cfg.Schema,
		action:    cfg.Action,
		onSuccess: opts.OnSuccess,
		onError:   opts.OnError,
		log:       log,
		single:    opts.SingleFlight,
		state:     cfg.InitialData,
		values:    map[string]string{},
		errors:    map[string]FieldError{},
		touched:   map[string]struct{}{},
	}
	c.transition = NewTransition(c.publish)
	return c, nil
}

// Register returns the binding for the named field.
func (c *Controller[T, R]) Register(name string) FieldBinding {
	c.mu.Lock()
	value := c.values[name]
	c.mu.Unlock()
	return FieldBinding{
		Name:     name,
		Value:    value,
		OnChange: func(ctx context.Context, v string) { c.Change(ctx, name, v) },
		OnBlur:   func(ctx context.Context) { c.Blur(ctx, name) },
	}
}

// Change records a new value for name. Touched fields are re-validated
// immediately; untouched fields wait for their first blur or a submission.
func (c *Controller[T, R]) Change(ctx context.Context, name, value string) {
	c.mu.Lock()
	c.values[name] = value
	if _, ok := c.touched[name]; ok {
		c.validateFieldLocked(ctx, name, value)
	}
	c.mu.Unlock()
	c.publish()
}

// Blur marks name as touched and validates it.
func (c *Controller[T, R]) Blur(ctx context.Context, name string) {
	c.mu.Lock()
	c.touched[name] = struct{}{}
	c.validateFieldLocked(ctx, name, c.values[name])
	c.mu.Unlock()
	c.publish()
}

// validateFieldLocked validates one field and stores only its first issue.
// Other fields' errors are left untouched.
func (c *Controller[T, R]) validateFieldLocked(ctx context.Context, name, value string) {
	fs, ok := c.schema.Field(name)
	if !ok {
		return
	}
	if _, err := fs.ParseField(ctx, value); err != nil {
		if iss := issuesOf(err); len(iss) > 0 {
			c.errors[name] = fieldErrorOf(iss[0])
			c.log.DebugContext(ctx, "field.invalid", slog.String("field", name), slog.String("code", iss[0].Code))
			return
		}
	}
	delete(c.errors, name)
}

// FieldError returns the current error for name.
func (c *Controller[T, R]) FieldError(name string) (FieldError, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fe, ok := c.errors[name]
	return fe, ok
}

// FormAction is the native submission path. It validates the whole
// submission; on failure it replaces the error set with one FieldError per
// failing field and returns nil without calling any callback. On success it
// clears the errors and starts the action in the transition.
func (c *Controller[T, R]) FormAction(ctx context.Context, fd *FormData) *Submission[R] {
	if fd == nil {
		fd = &FormData{}
	}
	if _, err := c.schema.Parse(ctx, fd.ToMap()); err != nil {
		verr := NewPerFieldError(issuesOf(err), c.isField)
		c.mu.Lock()
		c.errors = verr.Fields
		c.mu.Unlock()
		c.log.DebugContext(ctx, "form.invalid", slog.Int("fields", len(verr.Fields)))
		c.publish()
		return nil
	}
	return c.submit(ctx, fd, submitForm)
}

// ExecuteAction is the programmatic submission path. data is turned into a
// synthetic submission with stringified values (an empty one when data is
// nil). A validation failure is reported to OnError as a single
// FailureJoined error and leaves the field errors alone.
func (c *Controller[T, R]) ExecuteAction(ctx context.Context, data map[string]any) *Submission[R] {
	fd := FormDataFromMap(data)
	if _, err := c.schema.Parse(ctx, fd.ToMap()); err != nil {
		c.fail(ctx, "", NewJoinedError(issuesOf(err)))
		return nil
	}
	return c.submit(ctx, fd, submitForm)
}

// Dispatch is the framework-level submission path: the action runs with the
// committed state and its result becomes the new committed state. It is the
// only writer of State. Validation is left to the action itself.
func (c *Controller[T, R]) Dispatch(ctx context.Context, fd *FormData) *Submission[R] {
	if fd == nil {
		fd = &FormData{}
	}
	return c.submit(ctx, fd, submitDispatch)
}

func (c *Controller[T, R]) submit(ctx context.Context, fd *FormData, mode submitMode) *Submission[R] {
	sub := newSubmission[R]()
	var prev R
	prepare := func() {
		c.mu.Lock()
		if mode == submitForm {
			c.errors = map[string]FieldError{}
		}
		prev = c.state
		c.mu.Unlock()
	}
	work := func(ctx context.Context) {
		c.log.InfoContext(ctx, "submission.start", slog.String("submission", sub.id))
		result, err := c.action(ctx, prev, fd)
		if err != nil {
			c.fail(ctx, sub.id, err)
			sub.settle(result, err)
			return
		}
		if mode == submitDispatch {
			c.mu.Lock()
			c.state = result
			c.mu.Unlock()
			c.publish()
		}
		c.log.InfoContext(ctx, "submission.success", slog.String("submission", sub.id))
		if c.onSuccess != nil {
			c.onSuccess(result)
		}
		sub.settle(result, nil)
	}
	// Errors are only cleared once the submission holds a slot, so a
	// single-flight rejection leaves them in place.
	if !c.transition.start(ctx, c.single, prepare, work) {
		c.fail(ctx, "", ErrSubmissionInFlight)
		return nil
	}
	return sub
}

func (c *Controller[T, R]) fail(ctx context.Context, id string, err error) {
	attrs := []any{slog.String("err", err.Error())}
	if id != "" {
		attrs = append(attrs, slog.String("submission", id))
	}
	c.log.WarnContext(ctx, "submission.error", attrs...)
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller[T, R]) isField(name string) bool {
	_, ok := c.schema.Field(name)
	return ok
}

// State returns the committed state.
func (c *Controller[T, R]) State() R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Values returns a copy of the live field values.
func (c *Controller[T, R]) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.values)
}

// Errors returns a copy of the current field errors.
func (c *Controller[T, R]) Errors() map[string]FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.errors)
}

// Touched returns the touched field names in sorted order.
func (c *Controller[T, R]) Touched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedKeys(c.touched)
}

// Pending reports whether a submission is in flight.
func (c *Controller[T, R]) Pending() bool { return c.transition.Pending() }

// IsValid reports whether no field currently has an error.
func (c *Controller[T, R]) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) == 0
}

// ButtonDisabled reports whether the submit affordance should be disabled.
// It is advisory: submissions are still accepted unless SingleFlight is set.
func (c *Controller[T, R]) ButtonDisabled() bool {
	return c.Snapshot().ButtonDisabled
}

// Snapshot returns a consistent view of the controller.
func (c *Controller[T, R]) Snapshot() Snapshot[R] {
	pending := c.transition.Pending()
	c.mu.Lock()
	defer c.mu.Unlock()
	valid := len(c.errors) == 0
	return Snapshot[R]{
		State:          c.state,
		Values:         copyMap(c.values),
		Errors:         copyMap(c.errors),
		Touched:        sortedKeys(c.touched),
		Pending:        pending,
		IsValid:        valid,
		ButtonDisabled: pending || !valid,
	}
}

// Subscribe registers fn to receive a snapshot after every change. Snapshots
// are delivered one at a time in the order they were taken, so the last one a
// subscriber sees matches the controller once it is idle. fn must not call
// methods that change the controller. The returned func removes the
// subscription.
func (c *Controller[T, R]) Subscribe(fn func(Snapshot[R])) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber[R]{id: id, fn: fn})
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller[T, R]) publish() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.subMu.Lock()
	subs := make([]subscriber[R], len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()
	if len(subs) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, s := range subs {
		s.fn(snap)
	}
}

// Wait blocks until every started submission has settled and the pending
// flag has cleared.
func (c *Controller[T, R]) Wait() { c.transition.Wait() }

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
