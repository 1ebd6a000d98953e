package domain

// ReadStatus is the read-state shared by messages and notifications.
// NOT_READ is the initial state, READ is terminal.
type ReadStatus string

const (
	StatusNotRead ReadStatus = "NOT_READ"
	StatusRead    ReadStatus = "READ"
)

// MarkRead performs the single legal transition. Calling it on an
// already-READ item is a BadRequest, never a silent no-op.
func (s ReadStatus) MarkRead() (ReadStatus, error) {
	if s == StatusRead {
		return s, BadRequest("already read")
	}
	return StatusRead, nil
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", BadRequest("unknown role: " + s)
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return ProjectStatus(s), nil
	}
	return "", BadRequest("unknown project status: " + s)
}

type TaskStatus string

const (
	TaskToDo       TaskStatus = "TO_DO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskToDo, TaskInProgress, TaskDone:
		return TaskStatus(s), nil
	}
	return "", BadRequest("unknown task status: " + s)
}
