package domain

// TaskID names a task or a group. Groups share the task namespace since a
// dependency may point at either.
type TaskID string

// ResourceID names a person or machine that works on tasks.
type ResourceID string

func (t TaskID) Validate() error     { return validateIdentifier("task", string(t)) }
func (r ResourceID) Validate() error { return validateIdentifier("resource", string(r)) }

func (t TaskID) String() string     { return string(t) }
func (r ResourceID) String() string { return string(r) }

type identifier interface {
	~string
	Validate() error
}

func parse[ID identifier](s string) (ID, error) {
	id := ID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// NewTaskID returns s as a TaskID, or an error when it is not a usable name.
func NewTaskID(s string) (TaskID, error) { return parse[TaskID](s) }

// NewResourceID returns s as a ResourceID, or an error when it is not a
// usable name.
func NewResourceID(s string) (ResourceID, error) { return parse[ResourceID](s) }
