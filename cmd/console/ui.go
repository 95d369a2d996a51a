package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/maplewoodlane/engine/internal/handlers"
)

const PlaceHolderText = "wait 30 | talk mrs_finch | photo evidence mailbox | /help"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	sessionID    uuid.UUID
	last         *handlers.ActionResponse
	caseLog      []string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Pack selection state
	showPackModal bool
	packs         []string
	packMap       map[string]string
	selectedPack  int
	loadingPacks  bool

	// Quit confirmation state
	showQuitModal bool
}

type actionResponseMsg struct {
	response *handlers.ActionResponse
	err      error
}

type packsLoadedMsg struct {
	packs   []string
	packMap map[string]string
	err     error
}

type sessionCreatedMsg struct {
	sessionID uuid.UUID
	err       error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textarea:      ta,
		chatViewport:  chatVp,
		metaViewport:  metaVp,
		ready:         false,
		showPackModal: true,
		loadingPacks:  true,
		selectedPack:  0,
	}
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CASE BOARD") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.sessionID.String()[:8] + "...\n\n")

	if m.last != nil {
		content.WriteString(fmt.Sprintf("Day %d, %02d:%02d (%s)\n\n",
			m.last.Day, m.last.Minute/60, m.last.Minute%60, m.last.TimeOfDay))

		content.WriteString("Trust:\n")
		names := make([]string, 0, len(m.last.Trust))
		for name := range m.last.Trust {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			content.WriteString(fmt.Sprintf("• %s: %d\n", name, m.last.Trust[name]))
		}
		content.WriteString("\n")

		content.WriteString(fmt.Sprintf("Clues: %d found\n\n", len(m.last.Clues)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /clues: Clue log\n")

	return content.String()
}

// writeChatContent rebuilds the case log for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("MAPLEWOOD LANE") + "\n\n")
	content.WriteString("Iris Bell vanished from the quiet cul-de-sac of Maplewood Lane.\n")
	content.WriteString("Talk to the neighbors, take photos and piece the story together.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	for _, entry := range m.caseLog {
		content.WriteString(wordwrap.String(entry, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showPackModal {
		return m.loadPacks()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle pack modal first
	if m.showPackModal {
		return m.updatePackModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events
		// outside its bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)

		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			action, err := parseAction(input)
			if err != nil {
				m.caseLog = append(m.caseLog, errorStyle.Render(err.Error()))
				m.textarea.Reset()
				m.writeChatContent()
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.caseLog = append(m.caseLog, userStyle.Render("> ")+input)
			m.writeChatContent()

			return m, m.sendAction(action)
		}

	case actionResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.caseLog = append(m.caseLog, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.last = msg.response
			m.caseLog = append(m.caseLog, m.renderResponse(msg.response)...)
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.writeChatContent()
		return m, nil
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// parseAction turns one console command line into an API action.
func parseAction(input string) (handlers.ActionRequest, error) {
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	rest := fields[1:]

	// A bare number answers the current dialogue prompt.
	if n, err := strconv.Atoi(verb); err == nil {
		idx := n - 1
		return handlers.ActionRequest{Action: "choose", Choice: &idx}, nil
	}

	switch verb {
	case "wait":
		minutes := 30
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil || n <= 0 {
				return handlers.ActionRequest{}, fmt.Errorf("usage: wait <minutes>")
			}
			minutes = n
		}
		return handlers.ActionRequest{Action: "advance", Minutes: minutes}, nil

	case "go", "move":
		if len(rest) == 0 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: go <location>")
		}
		return handlers.ActionRequest{Action: "move", Location: rest[0]}, nil

	case "talk":
		if len(rest) == 0 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: talk <character>")
		}
		return handlers.ActionRequest{Action: "start_dialogue", Character: rest[0]}, nil

	case "bye", "leave":
		return handlers.ActionRequest{Action: "end_dialogue"}, nil

	case "photo":
		if len(rest) < 2 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: photo <type> <subject> [caption]")
		}
		return handlers.ActionRequest{
			Action:    "take_photo",
			PhotoType: rest[0],
			Subject:   rest[1],
			Caption:   strings.Join(rest[2:], " "),
		}, nil

	case "note":
		if len(rest) < 2 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: note <character> <text>")
		}
		return handlers.ActionRequest{
			Action:    "add_note",
			Character: rest[0],
			Text:      strings.Join(rest[1:], " "),
		}, nil

	case "theory":
		if len(rest) == 0 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: theory <text>")
		}
		return handlers.ActionRequest{Action: "set_theory", Text: strings.Join(rest, " ")}, nil

	case "accuse":
		if len(rest) == 0 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: accuse <character>")
		}
		return handlers.ActionRequest{Action: "accuse", Character: rest[0]}, nil

	case "show":
		if len(rest) < 2 {
			return handlers.ActionRequest{}, fmt.Errorf("usage: show <character> <clue>")
		}
		return handlers.ActionRequest{Action: "show_evidence", Character: rest[0], Clue: rest[1]}, nil

	case "ending":
		return handlers.ActionRequest{Action: "resolve_ending"}, nil
	}

	return handlers.ActionRequest{}, fmt.Errorf("unknown command %q, try /help", verb)
}

// renderResponse formats an action result as case log entries.
func (m *ConsoleUI) renderResponse(resp *handlers.ActionResponse) []string {
	var entries []string

	for _, ev := range resp.Events {
		line := loadingStyle.Render("✦ Something happens: " + ev.EventID)
		if ev.Result != nil && ev.Result.NewClue != "" {
			line += "\n" + narratorStyle.Render("  New clue: "+ev.Result.NewClue)
		}
		entries = append(entries, line)
	}

	if resp.Prompt != nil {
		var b strings.Builder
		b.WriteString(speakerStyle.Render(resp.Prompt.CharacterName+": ") + resp.Prompt.Text)
		if resp.Prompt.Result != nil && resp.Prompt.Result.NewClue != "" {
			b.WriteString("\n" + narratorStyle.Render("  New clue: "+resp.Prompt.Result.NewClue))
		}
		for _, c := range resp.Prompt.Choices {
			b.WriteString(fmt.Sprintf("\n  %d. %s", c.Index+1, c.Text))
		}
		entries = append(entries, b.String())
	}

	if resp.Photo != nil {
		entries = append(entries, narratorStyle.Render(fmt.Sprintf(
			"📷 %s photo of %s (quality %d)",
			resp.Photo.Type, resp.Photo.Subject, resp.Photo.Quality)))
	}

	if resp.Ending != nil {
		var b strings.Builder
		b.WriteString(titleStyle.Render("ENDING: "+resp.Ending.Name) + "\n")
		b.WriteString(resp.Ending.Description + "\n")
		b.WriteString(fmt.Sprintf("Clues: %d/%d (%d%%), average trust %d",
			resp.Ending.Stats.CluesFound, resp.Ending.Stats.TotalClues,
			resp.Ending.Stats.CluePercent, resp.Ending.Stats.AverageTrust))
		for who, text := range resp.Ending.Epilogues {
			b.WriteString("\n" + speakerStyle.Render(who+": ") + text)
		}
		entries = append(entries, b.String())
	}

	if len(entries) == 0 {
		entries = append(entries, promptStyle.Render(fmt.Sprintf(
			"Day %d, %02d:%02d", resp.Day, resp.Minute/60, resp.Minute%60)))
	}

	return entries
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• wait <minutes> - Let time pass
• go <location> - Walk somewhere
• talk <character> - Start a conversation
• 1, 2, 3... - Pick a dialogue choice
• bye - End the conversation
• photo <type> <subject> - Take a photo (portrait, location, evidence, anomaly)
• note <character> <text> - Write a note
• theory <text> - Update your working theory
• show <character> <clue> - Show evidence
• accuse <character> - Make an accusation
• ending - Close the case
• /clues - Clue log, /trust - Trust levels, /copy - Copy case log
• Ctrl+C - Quit
`
		m.caseLog = append(m.caseLog, titleStyle.Render("Help:")+helpText)

	case "/clues":
		var b strings.Builder
		b.WriteString(titleStyle.Render("Clue log:") + "\n")
		if m.last == nil || len(m.last.Clues) == 0 {
			b.WriteString("Nothing yet.")
		} else {
			for _, clue := range m.last.Clues {
				b.WriteString("• " + clue + "\n")
			}
		}
		m.caseLog = append(m.caseLog, b.String())

	case "/trust":
		var b strings.Builder
		b.WriteString(titleStyle.Render("Trust:") + "\n")
		if m.last == nil {
			b.WriteString("No reads yet.")
		} else {
			names := make([]string, 0, len(m.last.Trust))
			for name := range m.last.Trust {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				b.WriteString(fmt.Sprintf("• %s: %d\n", name, m.last.Trust[name]))
			}
		}
		m.caseLog = append(m.caseLog, b.String())

	case "/copy":
		if err := clipboard.WriteAll(strings.Join(m.caseLog, "\n\n")); err != nil {
			m.caseLog = append(m.caseLog, errorStyle.Render("Copy failed: "+err.Error()))
		} else {
			m.caseLog = append(m.caseLog, promptStyle.Render("Case log copied to clipboard."))
		}
	}

	m.textarea.Reset()
	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendAction(action handlers.ActionRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendAction(m.client, m.config.APIBaseURL, m.sessionID, action)
		return actionResponseMsg{resp, err}
	}
}

func (m ConsoleUI) loadPacks() tea.Cmd {
	return func() tea.Msg {
		orderedNames, packMap, err := listPacks(m.client, m.config.APIBaseURL)
		return packsLoadedMsg{orderedNames, packMap, err}
	}
}

func (m ConsoleUI) createSessionFromPack(packName string) tea.Cmd {
	return func() tea.Msg {
		session, err := createSession(m.client, m.config.APIBaseURL, packName)
		if err != nil {
			return sessionCreatedMsg{uuid.Nil, err}
		}
		return sessionCreatedMsg{session.ID, nil}
	}
}

func (m ConsoleUI) updatePackModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case packsLoadedMsg:
		m.loadingPacks = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.packs = msg.packs
			m.packMap = msg.packMap
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.sessionID = msg.sessionID
			m.showPackModal = false
			if m.width > 0 && m.height > 0 {
				chatWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - chatWidth - 6
				m.chatViewport.Width = chatWidth - 2
				m.chatViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(chatWidth - 4)
			}
			m.writeChatContent()
			m.metaViewport.SetContent(m.writeMetadata())
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingPacks {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				m.showQuitModal = true
				return m, nil
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedPack > 0 {
				m.selectedPack--
			}
		case tea.KeyDown:
			if m.selectedPack < len(m.packs)-1 {
				m.selectedPack++
			}
		case tea.KeyEnter:
			if len(m.packs) > 0 {
				m.loading = true
				return m, m.createSessionFromPack(m.packMap[m.packs[m.selectedPack]])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showPackModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Investigation?"))
	content.WriteString("\n\n")
	content.WriteString("Your session is saved on the server. Come back anytime.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPackModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingPacks {
		content.WriteString(modalTitleStyle.Render("Loading Cases..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available cases..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load cases: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Opening Case..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up the neighborhood..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Case"))
		content.WriteString("\n\n")

		for i, pack := range m.packs {
			if i == m.selectedPack {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", pack)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", pack)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showPackModal {
		return m.renderPackModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
