package meetings

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/meeting-insights/internal/domain/analysis"
	"github.com/bryanwahyu/meeting-insights/internal/domain/analyst"
	domain "github.com/bryanwahyu/meeting-insights/internal/domain/meetings"
)

// ActionItemView is one action item with the meeting it came from.
type ActionItemView struct {
	analysis.ActionItem
	Index        int       `json:"index"`
	MeetingID    string    `json:"meeting_id"`
	MeetingTitle string    `json:"meeting_title"`
	MeetingDate  time.Time `json:"meeting_date"`
	AnalysisID   string    `json:"analysis_id"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ActionItemFilter; FromDate/ToDate are YYYY-MM-DD and only match items
// whose deadline is an ISO date.
type ActionItemFilter struct {
	Status    analysis.Status
	Priority  analysis.Priority
	Owner     string
	FromDate  string
	ToDate    string
	SortBy    string // deadline | priority | status | createdAt
	SortOrder string
	Page      int
	PageSize  int
}

// Patch untuk satu action item; nil berarti tidak diubah.
type UpdateActionItemCommand struct {
	Task     *string
	Owner    *string
	Deadline *string
	Priority *string
	Status   *string
}

// DashboardStats rekap action item di analysis terbaru setiap meeting
type DashboardStats struct {
	TotalMeetings int64 `json:"totalMeetings"`
	ActionItems   struct {
		Total        int `json:"total"`
		Pending      int `json:"pending"`
		Completed    int `json:"completed"`
		HighPriority int `json:"highPriority"`
	} `json:"actionItems"`
}

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var priorityRank = map[analysis.Priority]int{
	analysis.PriorityHigh:   0,
	analysis.PriorityMedium: 1,
	analysis.PriorityLow:    2,
}

// collectActionItems walks the latest analysis of every non-archived meeting.
func (s *Service) collectActionItems(ctx context.Context, tenant string) ([]ActionItemView, error) {
	latest, err := s.Analyses.LatestByTenant(ctx, tenant)
	if err != nil {
		return nil, err
	}
	var out []ActionItemView
	for _, a := range latest {
		m, err := s.Meetings.Get(ctx, tenant, domain.MeetingID(a.MeetingID))
		if err != nil {
			// analysis without meeting: skip, delete is not atomic across repos
			continue
		}
		if m.IsArchived {
			continue
		}
		for i, it := range a.Result.ActionItems {
			out = append(out, ActionItemView{
				ActionItem:   it,
				Index:        i,
				MeetingID:    a.MeetingID,
				MeetingTitle: m.Title,
				MeetingDate:  m.Date,
				AnalysisID:   string(a.ID),
				GeneratedAt:  a.GeneratedAt,
			})
		}
	}
	return out, nil
}

func (s *Service) ListActionItems(ctx context.Context, tenant string, f ActionItemFilter) (domain.PaginatedResult[ActionItemView], error) {
	page := domain.ListFilter{Page: f.Page, PageSize: f.PageSize}.Normalize()

	verr := &domain.ValidationError{}
	if f.Status != "" && !f.Status.Valid() {
		verr.Add("status", "must be Pending or Completed")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		verr.Add("priority", "must be High, Medium or Low")
	}
	if f.FromDate != "" && !isoDateRe.MatchString(f.FromDate) {
		verr.Add("fromDate", "must be YYYY-MM-DD")
	}
	if f.ToDate != "" && !isoDateRe.MatchString(f.ToDate) {
		verr.Add("toDate", "must be YYYY-MM-DD")
	}
	if err := verr.Err(); err != nil {
		return domain.PaginatedResult[ActionItemView]{}, err
	}

	all, err := s.collectActionItems(ctx, tenant)
	if err != nil {
		return domain.PaginatedResult[ActionItemView]{}, err
	}

	owner := strings.ToLower(strings.TrimSpace(f.Owner))
	items := make([]ActionItemView, 0, len(all))
	for _, it := range all {
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.Priority != "" && it.Priority != f.Priority {
			continue
		}
		if owner != "" && !strings.Contains(strings.ToLower(it.Owner), owner) {
			continue
		}
		if f.FromDate != "" || f.ToDate != "" {
			if !isoDateRe.MatchString(it.Deadline) {
				continue
			}
			if f.FromDate != "" && it.Deadline < f.FromDate {
				continue
			}
			if f.ToDate != "" && it.Deadline > f.ToDate {
				continue
			}
		}
		items = append(items, it)
	}

	sortActionItems(items, f.SortBy, f.SortOrder == "asc")

	total := int64(len(items))
	start := page.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return domain.NewPage(items[start:end], page.Page, page.PageSize, total), nil
}

// sortActionItems; undated deadlines always sort last.
func sortActionItems(items []ActionItemView, by string, asc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch by {
		case "deadline":
			ad, bd := isoDateRe.MatchString(a.Deadline), isoDateRe.MatchString(b.Deadline)
			if ad != bd {
				return ad
			}
			if a.Deadline != b.Deadline {
				return (a.Deadline < b.Deadline) == asc
			}
		case "priority":
			if priorityRank[a.Priority] != priorityRank[b.Priority] {
				return (priorityRank[a.Priority] < priorityRank[b.Priority]) == asc
			}
		case "status":
			if a.Status != b.Status {
				return (a.Status > b.Status) == asc // Pending first when asc
			}
		default:
			if !a.GeneratedAt.Equal(b.GeneratedAt) {
				return a.GeneratedAt.Before(b.GeneratedAt) == asc
			}
		}
		if a.MeetingID != b.MeetingID {
			return a.MeetingID < b.MeetingID
		}
		return a.Index < b.Index
	})
}

// UpdateActionItem edits one item of the latest analysis by position.
func (s *Service) UpdateActionItem(ctx context.Context, tenant string, id domain.MeetingID, index int, cmd UpdateActionItemCommand) (*analyst.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.LatestAnalysis(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(a.Result.ActionItems) {
		return nil, fmt.Errorf("action item %d: %w", index, domain.ErrNotFound)
	}

	items := append([]analysis.ActionItem{}, a.Result.ActionItems...)
	it := &items[index]
	if cmd.Task != nil {
		it.Task = strings.TrimSpace(*cmd.Task)
	}
	if cmd.Owner != nil {
		it.Owner = strings.TrimSpace(*cmd.Owner)
	}
	if cmd.Deadline != nil {
		it.Deadline = strings.TrimSpace(*cmd.Deadline)
	}
	if cmd.Priority != nil {
		it.Priority = analysis.Priority(*cmd.Priority)
	}
	if cmd.Status != nil {
		it.Status = analysis.Status(*cmd.Status)
	}

	next := a.Result
	next.ActionItems = items
	return s.applyEdit(ctx, a, next, fmt.Sprintf("actionItems[%d]", index))
}

func (s *Service) Dashboard(ctx context.Context, tenant string) (DashboardStats, error) {
	var st DashboardStats
	n, err := s.Meetings.Count(ctx, tenant)
	if err != nil {
		return st, err
	}
	st.TotalMeetings = n

	items, err := s.collectActionItems(ctx, tenant)
	if err != nil {
		return st, err
	}
	for _, it := range items {
		st.ActionItems.Total++
		if it.Status == analysis.StatusCompleted {
			st.ActionItems.Completed++
		} else {
			st.ActionItems.Pending++
		}
		if it.Priority == analysis.PriorityHigh {
			st.ActionItems.HighPriority++
		}
	}
	return st, nil
}
