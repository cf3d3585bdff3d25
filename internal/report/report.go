package report

import (
	"FlowSentry/internal/model"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const separator = "-----------------------------"

// WriteText prints the report in the classic console layout: totals, elapsed
// time, then a per-worker breakdown when more than one worker ran.
func WriteText(w io.Writer, r *model.Report) error {
	var b strings.Builder

	if len(r.Workers) <= 1 {
		fmt.Fprintf(&b, "Backdoor Count: %d\n", r.Totals.Backdoor)
		fmt.Fprintf(&b, "DoS Count: %d\n", r.Totals.DoS)
		fmt.Fprintf(&b, "Reconnaissance Count: %d\n", r.Totals.Recon)
		fmt.Fprintf(&b, "Time taken: %f seconds\n", r.Elapsed.Seconds())
	} else {
		fmt.Fprintf(&b, "Total Backdoor Count: %d\n", r.Totals.Backdoor)
		fmt.Fprintf(&b, "Total DoS Count: %d\n", r.Totals.DoS)
		fmt.Fprintf(&b, "Total Reconnaissance Count: %d\n", r.Totals.Recon)
		fmt.Fprintf(&b, "Time taken (parallel version): %f seconds\n", r.Elapsed.Seconds())
		b.WriteString(separator + "\n")
		for _, wr := range r.Workers {
			fmt.Fprintf(&b, "Worker %d:\n", wr.Worker)
			fmt.Fprintf(&b, "Backdoor Count: %d\n", wr.Counters.Backdoor)
			fmt.Fprintf(&b, "DoS Count: %d\n", wr.Counters.DoS)
			fmt.Fprintf(&b, "Reconnaissance Count: %d\n", wr.Counters.Recon)
			b.WriteString(separator + "\n")
		}
	}

	if r.Malformed > 0 || r.Dropped > 0 {
		fmt.Fprintf(&b, "Skipped: %d malformed line(s), %d record(s) from untracked IPs\n", r.Malformed, r.Dropped)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Markdown renders a readable summary used in alert mails and API responses.
func Markdown(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Scan of `%s`\n\n", r.InputPath)
	fmt.Fprintf(&b, "Started %s, took %s over %d lines with %d worker(s).\n\n",
		r.StartedAt.Format("2006-01-02 15:04:05"), r.Elapsed, r.LinesRead, len(r.Workers))

	b.WriteString("| Category | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Backdoor | %d |\n", r.Totals.Backdoor)
	fmt.Fprintf(&b, "| DoS | %d |\n", r.Totals.DoS)
	fmt.Fprintf(&b, "| Reconnaissance | %d |\n\n", r.Totals.Recon)

	if r.Malformed > 0 || r.Dropped > 0 {
		fmt.Fprintf(&b, "%d malformed line(s) and %d record(s) from untracked IPs were skipped.\n\n", r.Malformed, r.Dropped)
	}

	offenders := false
	for _, wr := range r.Workers {
		if len(wr.TopOffenders) > 0 {
			offenders = true
			break
		}
	}
	if !offenders {
		return b.String()
	}

	b.WriteString("### Top offenders\n\n")
	b.WriteString("| Worker | IP | High-port | DoS | Recon | Ports |\n|---|---|---|---|---|---|\n")
	for _, wr := range r.Workers {
		for _, o := range wr.TopOffenders {
			fmt.Fprintf(&b, "| %d | %s | %d | %d | %d | %d |\n",
				wr.Worker, o.IP, o.HighPortAttempts, o.DoSAttempts, o.ReconAttempts, o.DistinctPorts)
		}
	}
	return b.String()
}
