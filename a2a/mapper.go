package a2a

import (
	"github.com/google/uuid"
)

// Event represents an A2A streaming event (status update or artifact update).
type Event interface {
	isA2AEvent()
}

func (TaskStatusUpdateEvent) isA2AEvent()   {}
func (TaskArtifactUpdateEvent) isA2AEvent() {}

// Mapper builds the task state and streaming updates for one task.
//
// Parts produced by the agent are accumulated with AddParts and reported
// on the final status message. Create a new Mapper for each task using
// NewMapper. The Mapper is not safe for concurrent use.
type Mapper struct {
	taskID    string
	contextID string
	state     TaskState
	parts     []Part
	history   []Message
}

// NewMapper creates a new Mapper for a single task.
func NewMapper(taskID, contextID string) *Mapper {
	if taskID == "" {
		taskID = uuid.New().String()
	}
	if contextID == "" {
		contextID = uuid.New().String()
	}
	return &Mapper{
		taskID:    taskID,
		contextID: contextID,
		state:     TaskStateSubmitted,
	}
}

// TaskID returns the task ID for this mapper.
func (m *Mapper) TaskID() string {
	return m.taskID
}

// ContextID returns the context ID for this mapper.
func (m *Mapper) ContextID() string {
	return m.contextID
}

// State returns the current task state.
func (m *Mapper) State() TaskState {
	return m.state
}

// Parts returns the parts accumulated so far.
func (m *Mapper) Parts() []Part {
	return m.parts
}

// AddParts accumulates parts for the final message and returns an
// artifact update carrying them, or nil when parts is empty.
func (m *Mapper) AddParts(parts ...Part) *TaskArtifactUpdateEvent {
	if len(parts) == 0 {
		return nil
	}
	m.parts = append(m.parts, parts...)
	ev := m.ArtifactUpdate(NewArtifact("response", "", parts...))
	return &ev
}

// Record appends msg to the task history.
func (m *Mapper) Record(msg Message) {
	m.history = append(m.history, msg)
}

// StatusUpdate creates a task status update event. Terminal states are
// always final.
func (m *Mapper) StatusUpdate(state TaskState, msg *Message, final bool) TaskStatusUpdateEvent {
	m.state = state
	return NewTaskStatusUpdateEvent(
		m.taskID,
		m.contextID,
		NewTaskStatusWithMessage(state, msg),
		final || state.IsTerminal(),
	)
}

// ArtifactUpdate creates a task artifact update event.
func (m *Mapper) ArtifactUpdate(artifact Artifact) TaskArtifactUpdateEvent {
	return NewTaskArtifactUpdateEvent(m.taskID, m.contextID, artifact)
}

// Submitted returns a status update for the submitted state.
func (m *Mapper) Submitted() TaskStatusUpdateEvent {
	return m.StatusUpdate(TaskStateSubmitted, nil, false)
}

// Working returns a status update for the working state.
func (m *Mapper) Working() TaskStatusUpdateEvent {
	return m.StatusUpdate(TaskStateWorking, nil, false)
}

// InputRequired returns a status update requesting additional input.
func (m *Mapper) InputRequired(prompt string) TaskStatusUpdateEvent {
	msg := m.message(NewTextPart(prompt))
	return m.StatusUpdate(TaskStateInputRequired, &msg, false)
}

// Completed returns a final status update carrying the accumulated parts.
func (m *Mapper) Completed() TaskStatusUpdateEvent {
	var msg *Message
	if len(m.parts) > 0 {
		final := m.message(m.parts...)
		msg = &final
	}
	return m.StatusUpdate(TaskStateCompleted, msg, true)
}

// Failed returns a final status update for failure.
func (m *Mapper) Failed(errMsg string) TaskStatusUpdateEvent {
	msg := m.message(NewTextPart(errMsg))
	return m.StatusUpdate(TaskStateFailed, &msg, true)
}

// Canceled returns a final status update for cancellation.
func (m *Mapper) Canceled() TaskStatusUpdateEvent {
	return m.StatusUpdate(TaskStateCanceled, nil, true)
}

// Apply folds a final status update into a task snapshot.
func (m *Mapper) Apply(update TaskStatusUpdateEvent) *Task {
	task := m.CreateTask()
	task.Status = update.Status
	return task
}

// CreateTask creates a Task object from the current mapper state.
func (m *Mapper) CreateTask() *Task {
	task := NewTask(m.taskID, m.contextID)
	task.Status = NewTaskStatus(m.state)
	task.History = m.history
	return task
}

// AgentMessage returns an agent message in this task carrying parts.
func (m *Mapper) AgentMessage(parts ...Part) Message {
	return m.message(parts...)
}

func (m *Mapper) message(parts ...Part) Message {
	taskID := m.taskID
	return NewMessageWithContext(MessageRoleAgent, m.contextID, &taskID, parts...)
}
