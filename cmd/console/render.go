package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/royal-chronicle/pkg/calendar"
	"github.com/jwebster45206/royal-chronicle/pkg/engine"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")). // pale blue
			Bold(true)

	feastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")) // rose

	eventTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	deltaGainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	deltaLossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // red

	notableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // amber

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	choiceSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("220")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Align(lipgloss.Center)

	chroniclePanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingBottom(1).
				PaddingLeft(3).
				PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)
)

// renderMorning builds the dawn report for the current day.
func renderMorning(st *world.State, width int) string {
	date := calendar.FromDayNumber(st.Day)

	var b strings.Builder
	b.WriteString(dateStyle.Render(date.FormatLong()) + "\n")

	if feast, ok := date.FeastDay(); ok {
		b.WriteString(feastStyle.Render("Feast: "+feast) + "\n")
	}
	b.WriteString(promptStyle.Render(date.WeatherFlavor()) + "\n")

	if st.Travel != nil {
		line := fmt.Sprintf("On the road to %s, %d days remain.",
			world.DisplayName(st.Travel.Destination), st.Travel.DaysRemaining)
		b.WriteString(bodyStyle.Render(wordwrap.String(line, width)) + "\n")
	} else {
		b.WriteString(bodyStyle.Render("The court is at "+world.DisplayName(st.Location)+".") + "\n")
	}
	return b.String()
}

// renderEvent formats an event's title and description for the chronicle.
func renderEvent(title, description string, width int) string {
	var b strings.Builder
	b.WriteString(eventTitleStyle.Render(title) + "\n")
	b.WriteString(bodyStyle.Render(wordwrap.String(description, width)) + "\n")
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func deltaLine(label string, d engine.FieldDelta) string {
	change := d.New - d.Old
	line := fmt.Sprintf("%s: %d → %d", label, d.Old, d.New)
	if d.Clamped != 0 {
		line += fmt.Sprintf(" (held at the limit, %d lost)", abs(d.Clamped))
	}
	if change >= 0 {
		return deltaGainStyle.Render(line)
	}
	return deltaLossStyle.Render(line)
}

// renderDeltas formats a delta report as chronicle lines. An empty
// report renders nothing.
func renderDeltas(report *engine.DeltaReport) string {
	if report.Empty() {
		return ""
	}
	var b strings.Builder

	for _, d := range report.Resources {
		b.WriteString(deltaLine(world.DisplayName(d.Field), d) + "\n")
	}
	for _, d := range report.Relationships {
		b.WriteString(deltaLine(world.DisplayName(d.Field)+" (loyalty)", d) + "\n")
	}
	for _, d := range report.Regions {
		b.WriteString(deltaLine(world.DisplayName(d.Field)+" (stability)", d) + "\n")
	}
	for _, f := range report.Flags {
		b.WriteString(notableStyle.Render(fmt.Sprintf("%s is now %s", f.Name, f.New.String())) + "\n")
	}

	if report.ChainStarted != "" {
		b.WriteString(notableStyle.Render("A new matter begins: "+world.DisplayName(report.ChainStarted)) + "\n")
	}
	if report.ChainCompleted {
		b.WriteString(notableStyle.Render("The matter of "+world.DisplayName(report.ChainAdvanced)+" is concluded.") + "\n")
	}
	if report.Travel != nil {
		b.WriteString(notableStyle.Render(fmt.Sprintf("The court sets out for %s (%d days).",
			world.DisplayName(report.Travel.Destination), report.Travel.Days)) + "\n")
	}
	return b.String()
}

// renderMeta builds the right-hand status panel.
func renderMeta(st *world.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("THE REALM") + "\n\n")

	b.WriteString("Playthrough:\n")
	b.WriteString(st.ID.String()[:8] + "...\n\n")

	b.WriteString("Crown:\n")
	b.WriteString(fmt.Sprintf("• Treasury:  %d\n", st.Treasury))
	b.WriteString(fmt.Sprintf("• Authority: %d\n", st.Authority))
	b.WriteString(fmt.Sprintf("• Military:  %d\n", st.Military))
	b.WriteString(fmt.Sprintf("• Papal:     %d\n\n", st.Papal))

	b.WriteString(fmt.Sprintf("Baron loyalty: %.0f avg\n", st.AverageLoyalty()))
	b.WriteString(fmt.Sprintf("Stability:     %.0f\n\n", st.KingdomStability()))

	if len(st.ActiveChains) > 0 {
		b.WriteString("Ongoing matters:\n")
		for _, ch := range st.ActiveChains {
			b.WriteString("• " + world.DisplayName(ch.ChainID) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Commands:\n")
	b.WriteString("• ↑/↓ + Enter: Choose\n")
	b.WriteString("• s: Save to slot\n")
	b.WriteString("• l: Load a slot\n")
	b.WriteString("• c: Copy playthrough ID\n")
	b.WriteString("• Ctrl+C: Quit\n")
	return b.String()
}

func renderEndReason(reason world.EndReason) string {
	switch reason {
	case world.EndBankruptcy:
		return "The crown's debts have swallowed the treasury. The exchequer can pay no one, and the reign ends in bankruptcy."
	case world.EndCivilWar:
		return "Royal authority has collapsed. The barons take up arms, and England slides into civil war."
	case world.EndMassRebellion:
		return "The baronage has abandoned the king. A general rebellion sweeps the realm."
	case world.EndKingdomCollapse:
		return "Every corner of the kingdom is in disorder. Nothing remains to govern."
	default:
		return "The reign is ended."
	}
}
