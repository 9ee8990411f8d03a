// Package profile provides optional runtime profiling for jstmpl.
//
// Profiling is backed by [github.com/pkg/profile] and is only compiled in
// when building with the "pprof" tag:
//
//	go build -tags pprof -o jstmpl .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// stopper, so callers never need their own build constraints.
//
// A profiler is configured with the [Profiler] type:
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles", Quiet: true}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode, for
// example cpu.pprof or mem.pprof. Inspect them with go tool pprof:
//
//	go tool pprof -http=:8080 /tmp/profiles/cpu.pprof
//
// Tracing a long render is usually more useful than CPU sampling, since the
// work is dominated by short expression evaluations:
//
//	jstmpl --pprof-mode=trace -f big.js.tmpl -e vars.yaml > /dev/null
//	go tool trace ~/.cache/jstmpl/pprof/trace.out
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
