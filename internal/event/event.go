package event

type Type string

const (
	TypeUserRegistered       Type = "user.registered"
	TypeUserVerified         Type = "user.verified"
	TypeLoginLockedOut       Type = "login.locked_out"
	TypePasswordResetIssued  Type = "password.reset_issued"
	TypePasswordResetDone    Type = "password.reset_completed"
	TypeJobCreated           Type = "job.created"
	TypeApplicationSubmitted Type = "application.submitted"
	TypeTaskMoved            Type = "task.moved"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"` // who triggered the event
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // returns channel and unsubscribe function
}
