package reviewconsole

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reeldesk/internal/bootstrap/logging"
	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/ports"
	"reeldesk/internal/usecase/review"
)

const maxShownHistory = 4
const maxAuditLines = 8

type ConsoleOptions struct {
	ActorID         string
	Role            string
	StateFilter     string
	CampaignFilter  string
	RefreshInterval time.Duration
}

type consoleModel struct {
	ctx             context.Context
	service         *review.Service
	actorID         string
	role            string
	stateFilter     string
	campaignFilter  string
	refreshInterval time.Duration

	submissions   []ports.Submission
	selectedIndex int
	detail        review.SubmissionDetail
	hasDetail     bool
	status        string
	auditLogs     []string
}

type submissionsLoadedMsg struct {
	items []ports.Submission
	err   error
}

type detailLoadedMsg struct {
	submissionID string
	detail       review.SubmissionDetail
	err          error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action       string
	submissionID string
	result       string
	err          error
}

func NewConsoleModel(ctx context.Context, service *review.Service, options ConsoleOptions) tea.Model {
	actorID := strings.TrimSpace(options.ActorID)
	role := normalizeRole(options.Role)
	if actorID == "" {
		actorID = role + "-console"
	}

	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &consoleModel{
		ctx:             ctx,
		service:         service,
		actorID:         actorID,
		role:            role,
		stateFilter:     normalizeStateFilter(options.StateFilter),
		campaignFilter:  strings.TrimSpace(options.CampaignFilter),
		refreshInterval: interval,
		status:          "starting",
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(m.loadSubmissionsCmd(), m.tickCmd())
}

func (m *consoleModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadSubmissionsCmd(), m.tickCmd())
	case submissionsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.submissions = msg.items
		if len(m.submissions) == 0 {
			m.selectedIndex = 0
			m.hasDetail = false
			m.status = "queue is empty"
			return m, nil
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if m.selectedIndex >= len(m.submissions) {
			m.selectedIndex = len(m.submissions) - 1
		}
		m.status = fmt.Sprintf("refreshed, %d submissions", len(m.submissions))
		return m, m.loadSelectedDetailCmd()
	case detailLoadedMsg:
		if !m.isCurrentSelected(msg.submissionID) {
			return m, nil
		}
		if msg.err != nil {
			m.hasDetail = false
			m.status = "detail load failed: " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		m.hasDetail = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.appendAuditLog(msg.action, msg.submissionID, "failed", msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
			m.appendAuditLog(msg.action, msg.submissionID, msg.result, nil)
		}
		return m, m.loadSubmissionsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadSubmissionsCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				return m, m.loadSelectedDetailCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.submissions)-1 {
				m.selectedIndex++
				return m, m.loadSelectedDetailCmd()
			}
			return m, nil
		case "a":
			return m, m.approveCmd()
		case "s":
			return m, m.applyCmd("send_to_client", review.FeedbackInput{})
		case "r":
			return m, m.applyCmd("request_revision", review.FeedbackInput{GeneralText: "revision requested from console"})
		case "x":
			return m, m.applyCmd("reject", review.FeedbackInput{GeneralText: "rejected from console"})
		case "u":
			return m, m.applyCmd("resubmit", review.FeedbackInput{})
		}
	}
	return m, nil
}

func (m *consoleModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Review Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"actor=%s role=%s state=%s campaign=%s refresh=%s",
		m.actorID,
		m.role,
		firstNonEmpty(m.stateFilter, "all"),
		firstNonEmpty(m.campaignFilter, "-"),
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Queue"))
	builder.WriteString("\n")
	if len(m.submissions) == 0 {
		builder.WriteString(dimStyle.Render("- no submissions"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.submissions {
			line := fmt.Sprintf(
				"%s [%s] v%d campaign=%s creator=%s %s",
				item.SubmissionID,
				item.State,
				item.Version,
				item.CampaignID,
				item.CreatorID,
				item.Content.Ref,
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

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if !m.hasDetail {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		sub := m.detail.Submission
		builder.WriteString(fmt.Sprintf("Submission: %s\n", sub.SubmissionID))
		builder.WriteString(fmt.Sprintf("State: %s (version %d)\n", sub.State, sub.Version))
		builder.WriteString(fmt.Sprintf("Campaign: %s Creator: %s\n", sub.CampaignID, sub.CreatorID))
		builder.WriteString(fmt.Sprintf("Content: %s %s\n", sub.Content.Kind, sub.Content.Ref))
		if sub.DurationSeconds > 0 {
			builder.WriteString(fmt.Sprintf("Duration: %ds\n", sub.DurationSeconds))
		} else {
			builder.WriteString("Duration: unknown\n")
		}
		builder.WriteString("\nRecent Transitions:\n")
		history := m.detail.History
		if len(history) == 0 {
			builder.WriteString("- none\n")
		} else {
			start := len(history) - maxShownHistory
			if start < 0 {
				start = 0
			}
			for _, record := range history[start:] {
				builder.WriteString(fmt.Sprintf(
					"- t%d %s %s→%s by %s(%s) %s\n",
					record.TransitionID,
					record.Action,
					record.FromState,
					record.ToState,
					record.ActorID,
					record.ActorRole,
					firstNonEmpty(record.Feedback.GeneralText, "-"),
				))
			}
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Actions"))
	builder.WriteString("\n")
	builder.WriteString("- a approve (stage-appropriate)\n")
	builder.WriteString("- s send to client\n")
	builder.WriteString("- r request revision\n")
	builder.WriteString("- x reject\n")
	builder.WriteString("- u resubmit\n")
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  a/s/r/x/u actions  q quit"))
	return builder.String()
}

func (m *consoleModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *consoleModel) loadSubmissionsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.service.ListSubmissions(m.ctx, review.ListSubmissionsInput{
			State:      m.stateFilter,
			CampaignID: m.campaignFilter,
		})
		if err != nil {
			return submissionsLoadedMsg{err: err}
		}
		return submissionsLoadedMsg{items: sortSubmissions(items)}
	}
}

func (m *consoleModel) loadSelectedDetailCmd() tea.Cmd {
	selected, ok := m.selectedSubmission()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		detail, err := m.service.GetSubmission(m.ctx, selected.SubmissionID)
		if err != nil {
			return detailLoadedMsg{submissionID: selected.SubmissionID, err: err}
		}
		return detailLoadedMsg{
			submissionID: selected.SubmissionID,
			detail:       detail,
		}
	}
}

// approveCmd resolves the stage-appropriate approving action for the console
// role before dispatching, so one key works across all review stages.
func (m *consoleModel) approveCmd() tea.Cmd {
	selected, ok := m.selectedSubmission()
	if !ok {
		m.status = "no submission selected"
		return nil
	}

	action, err := approveActionFor(m.role, selected.State)
	if err != nil {
		m.status = "approve: " + err.Error()
		return nil
	}
	return m.applyCmd(string(action), review.FeedbackInput{})
}

func (m *consoleModel) applyCmd(action string, feedback review.FeedbackInput) tea.Cmd {
	selected, ok := m.selectedSubmission()
	if !ok {
		m.status = "no submission selected"
		return nil
	}
	m.status = "applying " + action
	return func() tea.Msg {
		result, err := m.service.ApplyAction(m.ctx, review.ApplyActionInput{
			SubmissionID: selected.SubmissionID,
			ActorID:      m.actorID,
			ActorRole:    m.role,
			Action:       action,
			Feedback:     feedback,
		})
		if err != nil {
			return actionDoneMsg{action: action, submissionID: selected.SubmissionID, err: err}
		}
		return actionDoneMsg{
			action:       action,
			submissionID: selected.SubmissionID,
			result:       fmt.Sprintf("%s v%d", result.NewState, result.NewVersion),
		}
	}
}

func (m *consoleModel) selectedSubmission() (ports.Submission, bool) {
	if len(m.submissions) == 0 {
		return ports.Submission{}, false
	}
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.submissions) {
		return ports.Submission{}, false
	}
	return m.submissions[m.selectedIndex], true
}

func (m *consoleModel) isCurrentSelected(submissionID string) bool {
	selected, ok := m.selectedSubmission()
	if !ok {
		return false
	}
	return strings.TrimSpace(selected.SubmissionID) == strings.TrimSpace(submissionID)
}

func (m *consoleModel) appendAuditLog(action string, submissionID string, result string, opErr error) {
	outcome := strings.TrimSpace(result)
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	if outcome == "" {
		outcome = "ok"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s actor=%s role=%s submission=%s action=%s result=%s",
		timestamp, m.actorID, m.role, submissionID, action, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "review console action",
		slog.String("time", timestamp),
		slog.String("actor", m.actorID),
		slog.String("role", m.role),
		slog.String("submission_id", submissionID),
		slog.String("action", action),
		slog.String("result", outcome),
	)
}

// approveActionFor maps a role and the submission's current state onto the
// single approving action that is legal there.
func approveActionFor(role string, state domainreview.State) (domainreview.Action, error) {
	parsedRole, err := domainreview.ParseRole(role)
	if err != nil {
		return "", err
	}

	candidates := []domainreview.Action{
		domainreview.ActionApproveDirect,
		domainreview.ActionApprove,
		domainreview.ActionFinalApprove,
	}
	for _, candidate := range candidates {
		if _, err := domainreview.Lookup(state, parsedRole, candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no approving action for role %s in state %s", role, state)
}

func sortSubmissions(items []ports.Submission) []ports.Submission {
	sorted := make([]ports.Submission, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i int, j int) bool {
		if sorted[i].UpdatedAt == sorted[j].UpdatedAt {
			return sorted[i].SubmissionID < sorted[j].SubmissionID
		}
		return sorted[i].UpdatedAt > sorted[j].UpdatedAt
	})
	return sorted
}

func normalizeRole(input string) string {
	value := strings.TrimSpace(strings.ToLower(input))
	if value == "" {
		return "admin"
	}
	return value
}

func normalizeStateFilter(input string) string {
	return strings.TrimSpace(strings.ToLower(input))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}
