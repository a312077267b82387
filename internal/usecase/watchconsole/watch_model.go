// Package watchconsole is the terminal view of one user's watch list: tracked
// businesses on top, the alerts of the selected business below.
package watchconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
	"parlmonitor/internal/usecase/tracking"
)

const maxShownAlerts = 6

// Service is the slice of the tracking service the console needs.
type Service interface {
	ListTracked(ctx context.Context, userID uint64) ([]tracking.TrackedView, error)
	ListAlerts(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]ports.Alert, error)
	MarkAlertRead(ctx context.Context, userID uint64, alertID uint64) error
	SetPriority(ctx context.Context, userID uint64, businessNumber string, priority *int) error
}

type Options struct {
	UserID          uint64
	RefreshInterval time.Duration
}

type watchModel struct {
	ctx             context.Context
	service         Service
	userID          uint64
	refreshInterval time.Duration

	items         []tracking.TrackedView
	alerts        []ports.Alert
	selectedIndex int
	status        string
}

type dataLoadedMsg struct {
	items  []tracking.TrackedView
	alerts []ports.Alert
	err    error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action string
	number string
	result string
	err    error
}

func NewWatchModel(ctx context.Context, service Service, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &watchModel{
		ctx:             logging.WithComponent(ctx, "usecase.watchconsole"),
		service:         service,
		userID:          options.UserID,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

func (m *watchModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadCmd(), m.tickCmd())
	case dataLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.alerts = msg.alerts
		if m.selectedIndex >= len(m.items) {
			m.selectedIndex = len(m.items) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if len(m.items) == 0 {
			m.status = "watch list is empty"
		} else {
			m.status = fmt.Sprintf("refreshed, %d businesses, %d unread alerts", len(m.items), countUnread(m.alerts))
		}
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s %s failed: %v", msg.action, msg.number, msg.err)
			logging.Warn(m.ctx, "console action failed",
				slog.String("action", msg.action),
				slog.String("business_number", msg.number),
				slog.Any("err", errs.Loggable(msg.err)),
			)
		} else {
			m.status = fmt.Sprintf("%s %s: %s", msg.action, msg.number, msg.result)
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.items)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "r":
			return m, m.markReadCmd()
		case "p":
			return m, m.cyclePriorityCmd()
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	unreadStyle := lipgloss.NewStyle().Bold(true)

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Parlamentsmonitor"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf("user=%d refresh=%s", m.userID, m.refreshInterval)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Watch list"))
	builder.WriteString("\n")
	if len(m.items) == 0 {
		builder.WriteString(dimStyle.Render("- nothing tracked"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.items {
			line := fmt.Sprintf("%s [%s] %s next=%s %s",
				item.BusinessNumber,
				priorityLabel(item.Priority),
				firstNonEmpty(item.Status, "-"),
				formatDate(item.NextEventDate),
				item.Title,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Alerts"))
	builder.WriteString("\n")
	shown := m.selectedAlerts()
	if len(shown) == 0 {
		builder.WriteString(dimStyle.Render("- no alerts"))
		builder.WriteString("\n")
	} else {
		if len(shown) > maxShownAlerts {
			shown = shown[:maxShownAlerts]
		}
		for _, alert := range shown {
			line := fmt.Sprintf("%s %s %s", alert.CreatedAt.Format("2006-01-02"), alert.AlertType, alert.Message)
			if alert.IsRead {
				builder.WriteString("  " + dimStyle.Render(line))
			} else {
				builder.WriteString("* " + unreadStyle.Render(line))
			}
			builder.WriteString("\n")
		}
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  r mark newest read  p cycle priority  q quit"))
	return builder.String()
}

func (m *watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *watchModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.service.ListTracked(m.ctx, m.userID)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		alerts, err := m.service.ListAlerts(m.ctx, m.userID, false, 0)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{items: items, alerts: alerts}
	}
}

func (m *watchModel) markReadCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	var target *ports.Alert
	for _, alert := range m.selectedAlerts() {
		if !alert.IsRead {
			a := alert
			target = &a
			break
		}
	}
	if target == nil {
		m.status = "no unread alerts for " + selected.BusinessNumber
		return nil
	}

	alertID := target.ID
	return func() tea.Msg {
		err := m.service.MarkAlertRead(m.ctx, m.userID, alertID)
		return actionDoneMsg{action: "mark read", number: selected.BusinessNumber, result: fmt.Sprintf("alert %d", alertID), err: err}
	}
}

func (m *watchModel) cyclePriorityCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	next := nextPriority(selected.Priority)
	return func() tea.Msg {
		err := m.service.SetPriority(m.ctx, m.userID, selected.BusinessNumber, next)
		return actionDoneMsg{action: "priority", number: selected.BusinessNumber, result: priorityLabel(next), err: err}
	}
}

func (m *watchModel) selected() (tracking.TrackedView, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.items) {
		return tracking.TrackedView{}, false
	}
	return m.items[m.selectedIndex], true
}

// selectedAlerts keeps the service order, newest first.
func (m *watchModel) selectedAlerts() []ports.Alert {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	var out []ports.Alert
	for _, alert := range m.alerts {
		if alert.BusinessNumber == selected.BusinessNumber {
			out = append(out, alert)
		}
	}
	return out
}

// nextPriority cycles none -> 1 -> 2 -> 3 -> none.
func nextPriority(current *int) *int {
	if current == nil {
		p := 1
		return &p
	}
	if *current >= 3 {
		return nil
	}
	p := *current + 1
	return &p
}

func priorityLabel(priority *int) string {
	if priority == nil {
		return "--"
	}
	return fmt.Sprintf("P%d", *priority)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func countUnread(alerts []ports.Alert) int {
	n := 0
	for _, alert := range alerts {
		if !alert.IsRead {
			n++
		}
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
