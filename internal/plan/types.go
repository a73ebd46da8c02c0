// Package plan validates the task and group graph of a project and turns it
// into the internalized task list the scheduler consumes.
package plan

// Task represents a single unit of work assigned to one resource
type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Resource    string   `json:"resource" yaml:"resource"`
	Prediction  float64  `json:"prediction" yaml:"prediction"` // Estimated hours
	DependsOn   []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Actual      float64  `json:"actual,omitempty" yaml:"actual,omitempty"` // Hours spent so far
	Done        bool     `json:"done,omitempty" yaml:"done,omitempty"`
}

// Accuracy returns actual/prediction once any actual time is recorded.
func (t Task) Accuracy() (float64, bool) {
	if t.Actual <= 0 || t.Prediction <= 0 {
		return 0, false
	}
	return t.Actual / t.Prediction, true
}

// clone returns a copy that shares no slices with t.
func (t Task) clone() Task {
	if t.DependsOn != nil {
		deps := make([]string, len(t.DependsOn))
		copy(deps, t.DependsOn)
		t.DependsOn = deps
	}
	return t
}

// Group names a set of tasks and nested groups so dependencies can refer to
// all of them at once
type Group struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Members     []string `json:"tasks" yaml:"tasks"`
}
