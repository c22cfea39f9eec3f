package app

import (
	"fmt"

	"github.com/hylla/actionboard/internal/domain"
)

// StatusPresentation is the fixed display tuple for one workflow status.
type StatusPresentation struct {
	Status   domain.WorkflowStatus
	Visible  bool
	Label    string
	Icon     string
	Color    string
	Spinner  bool
	Terminal bool
	Detail   string
}

var statusPresentations = map[domain.WorkflowStatus]StatusPresentation{
	domain.WorkflowUploading:    {Label: "Uploading audio file...", Icon: "📤", Color: "#3B82F6"},
	domain.WorkflowTranscribing: {Label: "Transcribing speech to text...", Icon: "🎤", Color: "#8B5CF6"},
	domain.WorkflowAnalyzing:    {Label: "Extracting action items...", Icon: "🤖", Color: "#EC4899"},
	domain.WorkflowPushing:      {Label: "Saving action items...", Icon: "📝", Color: "#F59E0B"},
	domain.WorkflowCompleted:    {Label: "Done! Action items are ready.", Icon: "✅", Color: "#10B981", Terminal: true},
	domain.WorkflowError:        {Label: "Something went wrong", Icon: "❌", Color: "#EF4444", Terminal: true},
}

// PresentStatus maps (status, error) to its display tuple. Idle is hidden;
// unknown values fall back to the uploading tuple.
func PresentStatus(status domain.WorkflowStatus, errMsg string) StatusPresentation {
	if status == domain.WorkflowIdle || status == "" {
		return StatusPresentation{Status: domain.WorkflowIdle}
	}
	p, ok := statusPresentations[status]
	if !ok {
		p = statusPresentations[domain.WorkflowUploading]
	}
	p.Status = status
	p.Visible = true
	p.Spinner = !p.Terminal
	if status == domain.WorkflowError {
		p.Detail = errMsg
	}
	return p
}

// BadgeKind selects the badge style for one rendered result item.
type BadgeKind string

const (
	BadgeSuccess BadgeKind = "success"
	BadgeFailure BadgeKind = "failure"
	BadgeStatus  BadgeKind = "status"
)

// ResultItem is one rendered line of a workflow result.
type ResultItem struct {
	Task     string
	Assignee string
	Badge    string
	Kind     BadgeKind
}

// ResultView is the rendered form of a workflow result.
type ResultView struct {
	Destination domain.Destination
	Headline    string
	Summary     string
	Items       []ResultItem
	Hint        string
}

// RenderResult renders a workflow result, branching only on destination.
// Absent arrays render as an empty list.
func RenderResult(res domain.WorkflowResult) ResultView {
	view := ResultView{
		Destination: res.Destination,
		Summary:     res.SummaryText(),
		Items:       []ResultItem{},
	}
	switch res.Destination {
	case domain.DestinationNotion:
		view.Headline = fmt.Sprintf("%d action items sent to Notion", res.ActionItemsCount)
		if res.NotionResult == nil {
			break
		}
		for _, item := range res.NotionResult.Results {
			ri := ResultItem{Task: item.Task, Assignee: assigneeOr(item.Assignee), Badge: "failed", Kind: BadgeFailure}
			if item.Result.Succeeded() {
				ri.Badge = "created"
				ri.Kind = BadgeSuccess
			}
			view.Items = append(view.Items, ri)
		}
	case domain.DestinationInternal:
		view.Headline = fmt.Sprintf("%d action items saved to the board", res.ActionItemsCount)
		view.Hint = "Switch to the board view to manage these tasks."
		for _, task := range res.SavedTasks {
			view.Items = append(view.Items, ResultItem{
				Task:     task.Task,
				Assignee: task.AssigneeLabel(),
				Badge:    string(task.Status),
				Kind:     BadgeStatus,
			})
		}
	default:
		view.Headline = fmt.Sprintf("%d action items extracted", res.ActionItemsCount)
	}
	return view
}

func assigneeOr(name string) string {
	if name == "" {
		return "Unassigned"
	}
	return name
}
