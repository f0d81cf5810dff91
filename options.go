package spine

// options holds the resolved configuration for a new [Spine].
type options[B, T any] struct {
	effort    int
	logger    Logger
	activator Activator
}

// Option configures a [Spine] at construction time.
type Option[B, T any] interface {
	apply(*options[B, T])
}

type optionFunc[B, T any] func(*options[B, T])

func (f optionFunc[B, T]) apply(o *options[B, T]) { f(o) }

// WithEffort overrides the default fuel multiplier (4) used when budgeting
// fuel for each insert. Panics if effort is not positive; this is stricter
// than the source this package is adapted from, which silently clamps a
// zero effort up to one, since a silently-clamped misconfiguration is
// harder to notice than a panic at construction time.
func WithEffort[B, T any](effort int) Option[B, T] {
	if effort <= 0 {
		panic("spine: WithEffort: effort must be positive")
	}
	return optionFunc[B, T](func(o *options[B, T]) {
		o.effort = effort
	})
}

// WithLogger attaches a diagnostic sink. A nil logger is equivalent to
// omitting the option.
func WithLogger[B, T any](logger Logger) Option[B, T] {
	return optionFunc[B, T](func(o *options[B, T]) {
		if logger != nil {
			o.logger = logger
		}
	})
}

// WithActivator attaches a re-scheduling hint. It is invoked after each
// pending batch is promoted into the layers, when the layer array holds more
// than two layers and some layer below the topmost is not Vacant; it is not
// invoked otherwise, even if a merge is still in progress.
func WithActivator[B, T any](activator Activator) Option[B, T] {
	return optionFunc[B, T](func(o *options[B, T]) {
		o.activator = activator
	})
}

func resolveOptions[B, T any](opts []Option[B, T]) *options[B, T] {
	cfg := &options[B, T]{
		effort: defaultEffort,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}

const defaultEffort = 4
