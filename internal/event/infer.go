package event

import "strings"

// Description labels for the structured leave description.
const (
	labelLeaveTarget = "휴가대상"
	labelLeaveKind   = "휴가종류"
)

// leaveKinds are the recognized leave-category keywords a legacy title can
// end with.
var leaveKinds = []string{
	"연차",
	"오전반차",
	"오후반차",
	"반차",
	"대휴",
	"병가",
	"경조",
	"공가",
	"특별휴가",
}

// Inferred is the result of the legacy title heuristic.
type Inferred struct {
	EventType   string
	Summary     string
	Description string
}

// InferFromTitle inspects a title of the form "<name> <leave-kind>" and, on
// match, derives the leave event type, the cleaned summary and a structured
// description. It exists solely for items created before the event-type
// extended property existed; callers must not apply it when the property is
// present.
func InferFromTitle(title string) (Inferred, bool) {
	trimmed := strings.TrimSpace(title)
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return Inferred{}, false
	}

	kind := fields[len(fields)-1]
	if !isLeaveKind(kind) {
		return Inferred{}, false
	}
	target := strings.Join(fields[:len(fields)-1], " ")

	description := labelLeaveTarget + ": " + target + "\n" + labelLeaveKind + ": " + kind
	return Inferred{
		EventType:   TypeLeave,
		Summary:     trimmed,
		Description: description,
	}, true
}

// FormatSummary derives the outgoing title for a local event. Leave events
// re-prepend the leave target parsed from the structured description so that
// a consumer without extended-property support still sees the original
// "<name> <kind>" title. Other event types pass through unchanged.
func FormatSummary(e *LocalEvent) string {
	if e.EventType != TypeLeave {
		return e.Summary
	}
	target := DescriptionField(e.Description, labelLeaveTarget)
	if target == "" || strings.HasPrefix(e.Summary, target) {
		return e.Summary
	}
	return target + " " + e.Summary
}

// DescriptionField extracts the value of a "<label>: <value>" line from a
// structured description, or the empty string when absent.
func DescriptionField(description, label string) string {
	for _, line := range strings.Split(description, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), label+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func isLeaveKind(word string) bool {
	for _, kind := range leaveKinds {
		if word == kind {
			return true
		}
	}
	return false
}
