package task

// Builder accumulates child Results for a composite task, in place of the
// Python source's generator-based `Result.collect` decorator. A task calls
// Step for each sub-operation in sequence and finishes with Build (or
// BuildValue when the composite produces a value).
//
//	b := task.NewBuilder("tasks.CreateMember")
//	b.Step(plumbing.EnsureGroup(...))
//	user := b.StepValue(plumbing.EnsureUser(...))
//	return b.BuildValue(user)
type Builder struct {
	caller string
	parts  []Result
	state  *State // explicit override, if set via SetState
}

// NewBuilder starts a new composite result under the given qualified task
// name, used for the tree's caller label.
func NewBuilder(caller string) *Builder {
	return &Builder{caller: caller}
}

// Step appends a child result and returns it unchanged, so call sites can
// still inspect it (e.g. to short-circuit on Bool()).
func (b *Builder) Step(r Result) Result {
	b.parts = append(b.parts, r)
	return r
}

// StepValue appends a child result and returns its carried value, for the
// common case of chaining a created/looked-up object into the next step.
func (b *Builder) StepValue(r Result) any {
	b.parts = append(b.parts, r)
	return r.value
}

// SetState overrides the aggregated state the composite will report,
// instead of the default max-of-children rule.
func (b *Builder) SetState(s State) {
	b.state = &s
}

// Aggregate computes the max-of-children state, ignoring any override.
func (b *Builder) Aggregate() State {
	agg := Unchanged
	for _, p := range b.parts {
		agg = max(agg, p.state)
	}
	return agg
}

// Build finishes the composite with no carried value.
func (b *Builder) Build() Result {
	return b.BuildValue(nil)
}

// BuildValue finishes the composite, carrying the given value.
func (b *Builder) BuildValue(value any) Result {
	state := b.Aggregate()
	if b.state != nil {
		state = *b.state
	}
	return Result{
		state:  state,
		value:  value,
		parts:  append([]Result(nil), b.parts...),
		caller: b.caller,
	}
}
