package compare

import "fmt"

// Insights turns a metrics snapshot into short human-readable
// observations. Plain threshold checks, nothing clever.
func Insights(m Metrics) []string {
	var out []string

	switch m.Verdict {
	case VerdictUser:
		out = append(out, fmt.Sprintf("You are ahead by %.2f percentage points.", m.ReturnDiff))
	case VerdictBenchmark:
		out = append(out, fmt.Sprintf("The benchmark trader leads by %.2f percentage points.", -m.ReturnDiff))
	default:
		out = append(out, "Dead even so far.")
	}

	if m.User.Trades == 0 {
		out = append(out, "You have not closed a trade yet.")
		return out
	}

	if m.User.WinRate >= m.Benchmark.WinRate+10 {
		out = append(out, fmt.Sprintf("Your win rate (%.0f%%) is well above the benchmark's (%.0f%%).", m.User.WinRate, m.Benchmark.WinRate))
	} else if m.Benchmark.WinRate >= m.User.WinRate+10 {
		out = append(out, fmt.Sprintf("The benchmark wins more often: %.0f%% against your %.0f%%.", m.Benchmark.WinRate, m.User.WinRate))
	}

	if m.Benchmark.Trades > 0 && m.User.Trades >= 3*m.Benchmark.Trades {
		out = append(out, "You trade far more frequently than the benchmark; watch the fee drag.")
	}

	if m.User.TotalFeesUSD > 0 && m.Benchmark.TotalFeesUSD > 0 &&
		m.User.TotalFeesUSD > 2*m.Benchmark.TotalFeesUSD {
		out = append(out, fmt.Sprintf("Fees are eating into your result: $%.2f paid against the benchmark's $%.2f.", m.User.TotalFeesUSD, m.Benchmark.TotalFeesUSD))
	}

	if m.User.CapitalUtilization > 0.8 {
		out = append(out, "You are sizing near your full balance; one bad trade could be costly.")
	} else if m.User.CapitalUtilization > 0 && m.User.CapitalUtilization < 0.1 {
		out = append(out, "Your position sizes are very small relative to your balance.")
	}

	if m.Benchmark.AvgHold > 0 && m.User.AvgHold > 0 {
		if m.User.AvgHold < m.Benchmark.AvgHold/4 {
			out = append(out, "You hold positions much shorter than the benchmark does.")
		} else if m.User.AvgHold > 4*m.Benchmark.AvgHold {
			out = append(out, "You hold positions much longer than the benchmark does.")
		}
	}

	return out
}
