package profile

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Profiler configures and initializes the profiler.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Start initializes the profiler and returns a [Stopper] for it.
//
// Mode selects one of [Modes] and Path is the output directory. If the
// pprof build tag or Mode is unset, or Mode is unknown, Start returns a
// no-op. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// WithMode returns a copy of p using the given mode.
func (p Profiler) WithMode(mode string) Profiler {
	p.Mode = mode

	return p
}

// WithPath returns a copy of p writing profiles to path.
func (p Profiler) WithPath(path string) Profiler {
	p.Path = path

	return p
}

// WithQuiet returns a copy of p with its own logging suppressed or enabled.
func (p Profiler) WithQuiet(quiet bool) Profiler {
	p.Quiet = quiet

	return p
}

type ignore struct{}

func (ignore) Stop() {}
