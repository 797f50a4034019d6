package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/royal-chronicle/internal/storage"
	"github.com/jwebster45206/royal-chronicle/pkg/engine"
	"github.com/jwebster45206/royal-chronicle/pkg/event"
	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

type uiMode int

const (
	// modeResting waits for Enter to advance to the next morning.
	modeResting uiMode = iota
	// modeChoosing waits for the player to pick a choice.
	modeChoosing
	// modeSlots shows the save/load slot picker.
	modeSlots
	// modeQuit shows the quit confirmation.
	modeQuit
	// modeOver shows the end of the reign.
	modeOver
)

type slotAction int

const (
	slotSave slotAction = iota
	slotLoad
)

// ConsoleUI is the BubbleTea model that runs the chronicle.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine   *engine.Engine
	state    *world.State
	autosave *storage.AutosaveStore
	slots    *storage.SlotStore

	chronicleViewport viewport.Model
	metaViewport      viewport.Model
	ready             bool
	width             int
	height            int
	err               error

	// transcript is the chronicle text so far, re-wrapped on resize.
	transcript []string

	mode     uiMode
	prevMode uiMode

	currentEvent *event.Spec
	choices      []event.Choice
	selected     int

	slotAction   slotAction
	slotInfos    []storage.SlotInfo
	slotSelected int

	endReason world.EndReason
	notice    string
}

type slotsLoadedMsg struct {
	action slotAction
	infos  []storage.SlotInfo
	err    error
}

type slotSavedMsg struct {
	slot int
	err  error
}

type slotLoadedMsg struct {
	slot int
	snap *world.Snapshot
	err  error
}

type autosavedMsg struct {
	err error
}

type clipboardMsg struct {
	err error
}

// NewConsoleUI builds the model and opens the first morning.
func NewConsoleUI(eng *engine.Engine, st *world.State, autosave *storage.AutosaveStore, slots *storage.SlotStore) ConsoleUI {
	chronicleVp := viewport.New(60, 20)
	chronicleVp.MouseWheelEnabled = true
	metaVp := viewport.New(24, 20)

	m := ConsoleUI{
		engine:            eng,
		state:             st,
		autosave:          autosave,
		slots:             slots,
		chronicleViewport: chronicleVp,
		metaViewport:      metaVp,
	}
	m.transcript = append(m.transcript,
		titleStyle.Render("ROYAL CHRONICLE")+"\n"+
			bodyStyle.Render("England, in the year of grace 1205. The reign is yours to keep.")+"\n")
	m.beginDay()
	return m
}

// chronicleWidth is the usable text width inside the left panel.
func (m *ConsoleUI) chronicleWidth() int {
	w := m.chronicleViewport.Width - 6
	if w < 20 {
		w = 20
	}
	return w
}

// beginDay writes the morning report and picks the day's event.
func (m *ConsoleUI) beginDay() {
	width := m.chronicleWidth()
	m.transcript = append(m.transcript, separatorStyle.Render(strings.Repeat("─", width))+"\n")
	m.transcript = append(m.transcript, renderMorning(m.state, width))

	if over, reason := m.engine.CheckTerminal(m.state); over {
		m.endReason = reason
		m.mode = modeOver
		m.transcript = append(m.transcript,
			errorStyle.Render("THE REIGN ENDS")+"\n"+
				bodyStyle.Render(wordwrap.String(renderEndReason(reason), width))+"\n")
		return
	}

	spec, err := m.engine.SelectEventForDay(m.state)
	if err != nil {
		m.err = err
		m.mode = modeResting
		return
	}
	if spec == nil {
		m.currentEvent = nil
		m.choices = nil
		m.transcript = append(m.transcript,
			promptStyle.Render("The day passes without incident.")+"\n")
		m.mode = modeResting
		return
	}

	m.currentEvent = spec
	m.choices = m.engine.ListEligibleChoices(spec, m.state)
	m.selected = 0
	m.transcript = append(m.transcript, renderEvent(spec.Title, spec.Description, width))
	m.mode = modeChoosing
}

// applySelected resolves the highlighted choice.
func (m *ConsoleUI) applySelected() tea.Cmd {
	choice := m.choices[m.selected]
	report, err := m.engine.ApplyChoice(m.state, m.currentEvent.ID, choice.ID)
	if err != nil {
		m.err = err
		return nil
	}

	m.transcript = append(m.transcript,
		promptStyle.Render("» "+choice.Text)+"\n")
	if deltas := renderDeltas(report); deltas != "" {
		m.transcript = append(m.transcript, deltas)
	}

	m.currentEvent = nil
	m.choices = nil
	m.mode = modeResting
	return m.autosaveCmd()
}

// advanceDay retires for the night and opens the next morning.
func (m *ConsoleUI) advanceDay() tea.Cmd {
	m.engine.AdvanceDay(m.state)
	m.beginDay()
	return m.autosaveCmd()
}

func (m *ConsoleUI) autosaveCmd() tea.Cmd {
	if m.autosave == nil {
		return nil
	}
	snap := m.state.Snapshot()
	store := m.autosave
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return autosavedMsg{err: store.Save(ctx, snap)}
	}
}

func (m *ConsoleUI) openSlots(action slotAction) tea.Cmd {
	m.prevMode = m.mode
	m.mode = modeSlots
	m.slotAction = action
	m.slotInfos = nil
	m.slotSelected = 0
	store := m.slots
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		infos, err := store.List(ctx)
		return slotsLoadedMsg{action: action, infos: infos, err: err}
	}
}

func (m *ConsoleUI) saveSlotCmd(slot int) tea.Cmd {
	snap := m.state.Snapshot()
	store := m.slots
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return slotSavedMsg{slot: slot, err: store.Save(ctx, slot, snap)}
	}
}

func (m *ConsoleUI) loadSlotCmd(slot int) tea.Cmd {
	store := m.slots
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		snap, err := store.Load(ctx, slot)
		return slotLoadedMsg{slot: slot, snap: snap, err: err}
	}
}

func copyIDCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(id)}
	}
}

func (m *ConsoleUI) refreshChronicle() {
	var content strings.Builder
	for _, part := range m.transcript {
		content.WriteString(part)
		content.WriteString("\n")
	}

	if m.mode == modeChoosing {
		for i, c := range m.choices {
			label := fmt.Sprintf(" %d. %s ", i+1, c.Text)
			if i == m.selected {
				content.WriteString(choiceSelectedStyle.Render(label) + "\n")
			} else {
				content.WriteString(choiceStyle.Render(label) + "\n")
			}
		}
	}
	if m.mode == modeResting {
		content.WriteString(promptStyle.Render("Press Enter to retire for the night.") + "\n")
	}
	if m.mode == modeOver {
		content.WriteString(promptStyle.Render("Press Ctrl+C to close the chronicle.") + "\n")
	}
	if m.notice != "" {
		content.WriteString(notableStyle.Render(m.notice) + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.chronicleViewport.SetContent(content.String())
	m.chronicleViewport.GotoBottom()
}

func (m *ConsoleUI) refreshMeta() {
	m.metaViewport.SetContent(renderMeta(m.state))
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chronicleWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - chronicleWidth - 6
		m.chronicleViewport.Width = chronicleWidth - 2
		m.chronicleViewport.Height = m.height - 4
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.refreshChronicle()
		m.refreshMeta()
		return m, nil

	case tea.MouseMsg:
		var vpCmd tea.Cmd
		m.chronicleViewport, vpCmd = m.chronicleViewport.Update(msg)
		return m, vpCmd

	case autosavedMsg:
		if msg.err != nil {
			m.notice = "Autosave failed: " + msg.err.Error()
			m.refreshChronicle()
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.notice = "Could not copy the playthrough ID."
		} else {
			m.notice = "Playthrough ID copied."
		}
		m.refreshChronicle()
		return m, nil

	case slotsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = m.prevMode
		} else {
			m.slotInfos = msg.infos
		}
		m.refreshChronicle()
		return m, nil

	case slotSavedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = fmt.Sprintf("Saved to slot %d.", msg.slot)
		}
		m.mode = m.prevMode
		m.refreshChronicle()
		return m, nil

	case slotLoadedMsg:
		m.mode = m.prevMode
		if msg.err != nil {
			m.err = msg.err
		} else if msg.snap == nil {
			m.notice = fmt.Sprintf("Slot %d is empty.", msg.slot)
		} else if st, err := world.FromSnapshot(msg.snap); err != nil {
			m.err = err
		} else {
			m.state = st
			m.err = nil
			m.transcript = []string{
				titleStyle.Render("ROYAL CHRONICLE") + "\n" +
					bodyStyle.Render(fmt.Sprintf("The chronicle resumes from slot %d.", msg.slot)) + "\n",
			}
			m.beginDay()
			m.refreshMeta()
		}
		m.refreshChronicle()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeQuit:
			return m.updateQuit(msg)
		case modeSlots:
			return m.updateSlots(msg)
		case modeOver:
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updatePlaying(msg)
	}

	var vpCmd tea.Cmd
	m.chronicleViewport, vpCmd = m.chronicleViewport.Update(msg)
	return m, vpCmd
}

func (m ConsoleUI) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.prevMode = m.mode
		m.mode = modeQuit
		return m, nil

	case tea.KeyUp:
		if m.mode == modeChoosing && m.selected > 0 {
			m.selected--
			m.refreshChronicle()
		}
		return m, nil

	case tea.KeyDown:
		if m.mode == modeChoosing && m.selected < len(m.choices)-1 {
			m.selected++
			m.refreshChronicle()
		}
		return m, nil

	case tea.KeyEnter:
		var cmd tea.Cmd
		switch m.mode {
		case modeChoosing:
			cmd = m.applySelected()
		case modeResting:
			cmd = m.advanceDay()
		}
		m.refreshChronicle()
		m.refreshMeta()
		return m, cmd
	}

	switch msg.String() {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.mode == modeChoosing {
			idx := int(msg.String()[0] - '1')
			if idx < len(m.choices) {
				m.selected = idx
				cmd := m.applySelected()
				m.refreshChronicle()
				m.refreshMeta()
				return m, cmd
			}
		}
	case "s":
		return m, m.openSlots(slotSave)
	case "l":
		return m, m.openSlots(slotLoad)
	case "c":
		return m, copyIDCmd(m.state.ID.String())
	}

	var vpCmd tea.Cmd
	m.chronicleViewport, vpCmd = m.chronicleViewport.Update(msg)
	return m, vpCmd
}

func (m ConsoleUI) updateSlots(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.mode = m.prevMode
		m.refreshChronicle()
		return m, nil
	case tea.KeyUp:
		if m.slotSelected > 0 {
			m.slotSelected--
		}
	case tea.KeyDown:
		if m.slotSelected < storage.MaxSlots-1 {
			m.slotSelected++
		}
	case tea.KeyEnter:
		slot := m.slotSelected + 1
		if m.slotAction == slotSave {
			return m, m.saveSlotCmd(slot)
		}
		return m, m.loadSlotCmd(slot)
	}
	return m, nil
}

func (m ConsoleUI) updateQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEnter:
		return m, tea.Quit
	default:
		switch msg.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.mode = m.prevMode
			return m, nil
		}
	}
	return m, nil
}

func (m ConsoleUI) renderSlotModal() string {
	var content strings.Builder
	if m.slotAction == slotSave {
		content.WriteString(modalTitleStyle.Render("Save the Chronicle"))
	} else {
		content.WriteString(modalTitleStyle.Render("Load a Chronicle"))
	}
	content.WriteString("\n\n")

	occupied := make(map[int]storage.SlotInfo, len(m.slotInfos))
	for _, info := range m.slotInfos {
		occupied[info.Slot] = info
	}

	for i := 0; i < storage.MaxSlots; i++ {
		slot := i + 1
		label := fmt.Sprintf(" Slot %d: empty ", slot)
		if info, ok := occupied[slot]; ok {
			label = fmt.Sprintf(" Slot %d: day %d, %s, treasury %d ",
				slot, info.Day, world.DisplayName(info.Location), info.Treasury)
		}
		if i == m.slotSelected {
			content.WriteString(choiceSelectedStyle.Render("▶" + label))
		} else {
			content.WriteString(choiceStyle.Render(" " + label))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ to pick a slot, Enter to confirm, Esc to cancel"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Close the Chronicle?"))
	content.WriteString("\n\n")
	content.WriteString("The realm will keep until you return.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(46).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	switch m.mode {
	case modeSlots:
		return m.renderSlotModal()
	case modeQuit:
		return m.renderQuitModal()
	}

	chronicleWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chronicleWidth - 6

	chroniclePanel := chroniclePanelStyle.Width(chronicleWidth).Height(m.height - 2).Render(
		m.chronicleViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chroniclePanel, metaPanel)
}
