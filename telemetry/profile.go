package telemetry

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"slices"
	"time"

	"github.com/google/pprof/profile"
)

// FunctionCost is the CPU time attributed to one function.
type FunctionCost struct {
	Name string
	Flat time.Duration // time with the function on top of the stack
	Cum  time.Duration // time with the function anywhere on the stack
}

// StartCPUProfile begins CPU profiling into path. The returned stop function
// ends profiling and closes the file.
func StartCPUProfile(path string) (stop func() error, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}

// TopFunctions parses a CPU profile and returns up to n functions ordered by
// flat time, along with the total sampled time.
func TopFunctions(r io.Reader, n int) ([]FunctionCost, time.Duration, error) {
	p, err := profile.Parse(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing cpu profile: %w", err)
	}
	idx := cpuValueIndex(p)
	if idx < 0 {
		return nil, 0, fmt.Errorf("parsing cpu profile: no sample types")
	}

	flat := make(map[string]int64)
	cum := make(map[string]int64)
	var total int64
	for _, s := range p.Sample {
		v := s.Value[idx]
		total += v

		seen := make(map[string]bool)
		for i, loc := range s.Location {
			// Line[0] is the innermost inlined frame
			for j, line := range loc.Line {
				if line.Function == nil {
					continue
				}
				name := line.Function.Name
				if i == 0 && j == 0 {
					flat[name] += v
				}
				if !seen[name] {
					cum[name] += v
					seen[name] = true
				}
			}
		}
	}

	costs := make([]FunctionCost, 0, len(cum))
	for name, c := range cum {
		costs = append(costs, FunctionCost{
			Name: name,
			Flat: time.Duration(flat[name]),
			Cum:  time.Duration(c),
		})
	}
	slices.SortFunc(costs, func(a, b FunctionCost) int {
		return cmp.Or(
			cmp.Compare(b.Flat, a.Flat),
			cmp.Compare(b.Cum, a.Cum),
			cmp.Compare(a.Name, b.Name),
		)
	})
	if n > 0 && len(costs) > n {
		costs = costs[:n]
	}
	return costs, time.Duration(total), nil
}

// cpuValueIndex finds the cpu/nanoseconds sample value, falling back to the
// last sample type.
func cpuValueIndex(p *profile.Profile) int {
	for i, st := range p.SampleType {
		if st.Type == "cpu" && st.Unit == "nanoseconds" {
			return i
		}
	}
	return len(p.SampleType) - 1
}

// WriteTopFunctions prints a flat/cum table in the style of pprof's top view.
func WriteTopFunctions(w io.Writer, costs []FunctionCost, total time.Duration) {
	fmt.Fprintf(w, "Showing top %d functions, %s total sampled\n", len(costs), total.Round(time.Millisecond))
	fmt.Fprintf(w, "%10s %6s %10s %6s  %s\n", "flat", "flat%", "cum", "cum%", "function")
	for _, c := range costs {
		fmt.Fprintf(w, "%10s %5.1f%% %10s %5.1f%%  %s\n",
			c.Flat.Round(time.Microsecond), pct(c.Flat, total),
			c.Cum.Round(time.Microsecond), pct(c.Cum, total),
			c.Name)
	}
}

// WritePhaseTotals prints cumulative phase timing, slowest first.
func WritePhaseTotals(w io.Writer, totals map[string]time.Duration, ticks int) {
	var sum time.Duration
	for _, d := range totals {
		sum += d
	}
	fmt.Fprintf(w, "=== Phases over %d ticks (%s) ===\n", ticks, sum.Round(time.Microsecond))
	for _, name := range SortedPhases(totals) {
		d := totals[name]
		var perTick time.Duration
		if ticks > 0 {
			perTick = d / time.Duration(ticks)
		}
		fmt.Fprintf(w, "  %-10s %12s  %5.1f%%  (%s/tick)\n",
			name, d.Round(time.Microsecond), pct(d, sum), perTick.Round(time.Microsecond))
	}
}

// SortedPhases returns phase names sorted by duration (descending).
func SortedPhases(totals map[string]time.Duration) []string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(totals[b], totals[a]), cmp.Compare(a, b))
	})
	return names
}

func pct(d, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(d) / float64(total) * 100
}
