package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/D-ignite/webex-cdr/internal/calls"
	"github.com/D-ignite/webex-cdr/internal/reporting"
	"github.com/D-ignite/webex-cdr/internal/viewer"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Options struct {
	// Location for call timestamps; nil means time.Local.
	Location *time.Location
	// Lang drives number formatting; the zero tag means English.
	Lang language.Tag
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) printer() *message.Printer {
	if o.Lang == language.Und {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(o.Lang)
}

// Health renders the gateway health banner.
func Health(h viewer.Health, err error) string {
	s := newStyles()
	if err == nil && h.Healthy() {
		return s.ok.Render("API Connected:") + " Authenticated as " + h.API.User
	}

	lines := []string{s.warning.Render("API connection unhealthy")}
	if err != nil {
		lines = append(lines, s.detail.Render(err.Error()))
	}
	if h.Resolution != "" {
		lines = append(lines, s.label.Render("Resolution:")+" "+h.Resolution)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Users renders the selectable roster.
func Users(people []calls.Person) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Users"),
		s.header.Render(fmt.Sprintf("users: %d", len(people))),
	}
	if len(people) == 0 {
		lines = append(lines, s.empty.Render("No users found"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	for _, p := range people {
		lines = append(lines, fmt.Sprintf("%s  %s", p.Name(), s.header.Render(p.ID)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Calls renders the visible records under the active filter, followed by the stats block.
// total is the size of the unfiltered dataset.
func Calls(visible []calls.Record, total int, filter viewer.DirectionFilter, summary reporting.CallsSummary, opts Options) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Call History"),
		s.header.Render(fmt.Sprintf("filter: %s  showing %d of %d", filter, len(visible), total)),
	}

	switch {
	case total == 0:
		lines = append(lines, s.empty.Render("No call history found for the selected criteria"))
	case len(visible) == 0:
		lines = append(lines, s.empty.Render("No calls match the selected filter"))
	default:
		for _, r := range visible {
			lines = append(lines, s.section.Render(callItem(r, opts, s)))
		}
	}

	lines = append(lines, s.section.Render(Stats(summary, opts)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func callItem(r calls.Record, opts Options, s styles) string {
	when := "unknown time"
	if !r.StartTime.IsZero() {
		when = r.StartTime.In(opts.loc()).Format("2006-01-02 15:04:05")
	}

	head := fmt.Sprintf("%s %s  Duration: %s  %s",
		directionStyle(r.Direction, s).Render(r.Direction.Label()),
		when,
		viewer.FormatDuration(r.DurationSeconds),
		s.header.Render("User: "+r.EntityName),
	)

	from := viewer.FormatPhoneNumber(r.FromParty)
	if r.CallerName != "" {
		from += " (" + r.CallerName + ")"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		head,
		"  "+s.detail.Render("From: "+from),
		"  "+s.detail.Render("To: "+viewer.FormatPhoneNumber(r.ToParty)),
	)
}

func directionStyle(d calls.Direction, s styles) lipgloss.Style {
	switch d {
	case calls.DirectionInbound:
		return s.inbound
	case calls.DirectionOutbound:
		return s.outbound
	case calls.DirectionMissed:
		return s.missed
	default:
		return s.unknown
	}
}

// Stats renders aggregate counts over the whole dataset.
func Stats(sum reporting.CallsSummary, opts Options) string {
	s := newStyles()
	if sum.TotalCalls == 0 {
		return s.empty.Render("No data available")
	}
	p := opts.printer()
	lines := []string{
		s.title.Render(p.Sprintf("Total Calls: %d", sum.TotalCalls)),
		p.Sprintf("Inbound: %d", sum.InboundCalls),
		p.Sprintf("Outbound: %d", sum.OutboundCalls),
		p.Sprintf("Missed: %d", sum.MissedCalls),
	}
	if sum.UnknownCalls > 0 {
		lines = append(lines, p.Sprintf("Unknown: %d", sum.UnknownCalls))
	}
	lines = append(lines,
		s.title.Render("Total Talk Time"),
		viewer.FormatTotalDuration(sum.TotalDurationSeconds),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Failures lists entities skipped under partial merge.
func Failures(failures []viewer.EntityFailure) string {
	if len(failures) == 0 {
		return ""
	}
	s := newStyles()
	lines := []string{s.warning.Render(fmt.Sprintf("%d user(s) could not be fetched:", len(failures)))}
	for _, f := range failures {
		lines = append(lines, "  "+s.detail.Render(fmt.Sprintf("%s: %v", f.EntityName, f.Err)))
	}
	return strings.Join(lines, "\n")
}
