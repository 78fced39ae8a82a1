package api

import "time"

type Status string

const (
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusLLMExecuted Status = "llm-executed"
)

// Envelope is the uniform JSON wrapper around a task outcome.
// TaskID echoes an identifier dispatch, Task echoes free text.
type Envelope struct {
	Status  Status `json:"status"`
	TaskID  string `json:"task_id,omitempty"`
	Task    string `json:"task,omitempty"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

func Success(taskID string, result any) *Envelope {
	return &Envelope{
		Status: StatusSuccess,
		TaskID: taskID,
		Result: result,
	}
}

func Failure(err error) *Envelope {
	return &Envelope{
		Status:  StatusError,
		Message: err.Error(),
		Kind:    KindOf(err),
	}
}

// HTTPStatus is the response code for the envelope.
func (e *Envelope) HTTPStatus() int {
	if e.Status == StatusError {
		return e.Kind.HTTPStatus()
	}
	return 200
}

// Run records a single dispatch for the history store.
type Run struct {
	ID      string    `json:"id"`
	TaskID  string    `json:"task_id,omitempty"`
	Task    string    `json:"task,omitempty"`
	Status  Status    `json:"status"`
	Kind    Kind      `json:"kind,omitempty"`
	Started time.Time `json:"started"`
	Took    int64     `json:"took_ms"`
}
