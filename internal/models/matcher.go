package models

import "strings"

// TaskMatcher selects tasks for Project.FindTasks
type TaskMatcher interface {
	Match(t *Task) bool
}

// MatchFunc adapts a plain function to TaskMatcher
type MatchFunc func(t *Task) bool

func (f MatchFunc) Match(t *Task) bool { return f(t) }

// NotDoneMatcher matches tasks that are not done
type NotDoneMatcher struct{}

func (NotDoneMatcher) Match(t *Task) bool { return t.state != StateDone }

// PrioMatcher matches tasks with the given priority
type PrioMatcher struct {
	Priority Priority
}

func (m PrioMatcher) Match(t *Task) bool { return t.priority == m.Priority }

// TakenByMatcher matches tasks assigned to Name. Unassigned tasks never match.
type TakenByMatcher struct {
	Name string
}

func (m TakenByMatcher) Match(t *Task) bool {
	return t.assignee != "" && t.assignee == m.Name
}

// DescriptionMatcher matches tasks whose description contains Substring,
// ignoring case
type DescriptionMatcher struct {
	Substring string
}

func (m DescriptionMatcher) Match(t *Task) bool {
	return strings.Contains(strings.ToLower(t.description), strings.ToLower(m.Substring))
}

// AllOf matches tasks accepted by every matcher. With no matchers it matches everything.
func AllOf(matchers ...TaskMatcher) TaskMatcher {
	return MatchFunc(func(t *Task) bool {
		for _, m := range matchers {
			if !m.Match(t) {
				return false
			}
		}
		return true
	})
}

// AnyOf matches tasks accepted by at least one matcher
func AnyOf(matchers ...TaskMatcher) TaskMatcher {
	return MatchFunc(func(t *Task) bool {
		for _, m := range matchers {
			if m.Match(t) {
				return true
			}
		}
		return false
	})
}
