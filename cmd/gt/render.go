package main

import (
	"fmt"
	"io"
	"strings"

	"gt-go/internal/gt"
)

// printStatus writes the full status report.
func printStatus(w io.Writer, st gt.Status, loc *gt.Localizer) {
	r := st.Resin
	fmt.Fprintf(w, "Resin:       %d/%d", r.Amount, r.Max)
	if r.TimeToFull > 0 {
		fmt.Fprintf(w, "  next in %s, full in %s (%s)",
			loc.FormatDuration(r.TimeToNext),
			loc.FormatDuration(r.TimeToFull),
			r.FullAt.Local().Format("01-02 15:04"))
	}
	fmt.Fprintln(w)

	for _, c := range []gt.CycleView{st.WeeklyBoss, st.Abyss, st.Theater} {
		fmt.Fprintf(w, "%-12s %s  resets in %s\n", c.Name+":", cycleProgress(c), loc.FormatDuration(c.TimeToReset))
	}

	fmt.Fprintln(w, "Expeditions:")
	for _, e := range st.Expeditions {
		line := fmt.Sprintf("  #%d  %s", e.ID, e.Label)
		if e.State == gt.ExpeditionRunning {
			line += "  " + loc.FormatDuration(e.TimeLeft)
		}
		fmt.Fprintln(w, line)
	}

	printNotifications(w, st.Notifications)
}

// printNotifications writes one line per active notification.
func printNotifications(w io.Writer, ns []gt.Notification) {
	if len(ns) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return
	}
	fmt.Fprintln(w, "Notifications:")
	for _, n := range ns {
		fmt.Fprintf(w, "  [%-7s] %-10s %s  %s\n",
			n.Severity, n.Category, n.Message, n.CreatedAt.Local().Format("01-02 15:04"))
	}
}

// statusLine is the single line redrawn by watch.
func statusLine(st gt.Status, loc *gt.Localizer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "resin %d/%d", st.Resin.Amount, st.Resin.Max)
	if st.Resin.TimeToFull > 0 {
		fmt.Fprintf(&b, " (full in %s)", loc.FormatDuration(st.Resin.TimeToFull))
	}
	fmt.Fprintf(&b, " | boss %s | abyss %s | theater %s",
		cycleProgress(st.WeeklyBoss), cycleProgress(st.Abyss), cycleProgress(st.Theater))

	ready := 0
	for _, e := range st.Expeditions {
		if e.State == gt.ExpeditionComplete {
			ready++
		}
	}
	fmt.Fprintf(&b, " | expeditions %d ready", ready)

	if st.Info.HasAny {
		fmt.Fprintf(&b, " | %d alert(s), %s", st.Info.Count, st.Info.Highest)
	}
	return b.String()
}

func cycleProgress(c gt.CycleView) string {
	if c.Limit == 1 {
		if c.Completed {
			return "done"
		}
		return "open"
	}
	return fmt.Sprintf("%d/%d", c.Progress, c.Limit)
}
