package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
)

// Recorder persists run records. It may be nil.
type Recorder interface {
	Append(*api.Run) error
}

// Dispatcher resolves identifiers and free text to tasks and runs them.
type Dispatcher struct {
	env     *Env
	history Recorder
}

func NewDispatcher(env *Env, history Recorder) *Dispatcher {
	return &Dispatcher{
		env:     env,
		history: history,
	}
}

// RunID runs the task registered under id with the optional arg.
func (d *Dispatcher) RunID(ctx context.Context, id, arg string) *api.Envelope {
	id = strings.TrimSpace(id)
	start := time.Now()

	var env *api.Envelope
	t, ok := Lookup(strings.ToUpper(id))
	if !ok {
		env = api.Failure(unknownTask(id))
	} else {
		env = d.run(ctx, t, arg)
	}
	env.TaskID = id

	d.record(env, start)
	return env
}

// RunText resolves free text: a registered identifier, then the keyword
// rules, then the language model.
func (d *Dispatcher) RunText(ctx context.Context, text string) *api.Envelope {
	text = strings.TrimSpace(text)
	if text == "" {
		return api.Failure(api.NewBadRequestError("task is required"))
	}
	if _, ok := Lookup(strings.ToUpper(text)); ok {
		return d.RunID(ctx, text, "")
	}

	start := time.Now()

	var env *api.Envelope
	if rule, arg, ok := Match(text); ok {
		if rule.Deny() {
			env = api.Failure(api.NewAccessDeniedError("refusing to %s data", rule.Phrases[0]))
		} else {
			t, _ := Lookup(rule.Task)
			log.Infof("matched %q to %s %s\n", text, t.ID, arg)
			env = d.run(ctx, t, arg)
			env.TaskID = t.ID
		}
	} else {
		env = d.ask(ctx, text)
	}
	env.Task = text

	d.record(env, start)
	return env
}

func (d *Dispatcher) run(ctx context.Context, t *Task, arg string) *api.Envelope {
	result, err := d.invoke(ctx, t, arg)
	if err != nil {
		log.Errorf("task %s failed: %v\n", t.ID, err)
		return api.Failure(err)
	}
	return api.Success(t.ID, result)
}

func (d *Dispatcher) invoke(ctx context.Context, t *Task, arg string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("%s\n", debug.Stack())
			err = api.NewError(api.KindInternal, "task %s: %v", t.ID, r)
		}
	}()
	log.Debugf("running task %s arg: %q\n", t.ID, arg)
	return t.Run(ctx, d.env, arg)
}

// ask forwards text to the language model. The reply is not a verified task result.
func (d *Dispatcher) ask(ctx context.Context, text string) *api.Envelope {
	if err := requireLLM(d.env); err != nil {
		return api.Failure(err)
	}
	reply, err := d.env.LLM.Send(ctx, "", text)
	if err != nil {
		return api.Failure(err)
	}
	return &api.Envelope{
		Status: api.StatusLLMExecuted,
		Result: reply,
	}
}

func (d *Dispatcher) record(env *api.Envelope, start time.Time) {
	if d.history == nil {
		return
	}
	run := &api.Run{
		ID:      uuid.NewString(),
		TaskID:  env.TaskID,
		Task:    env.Task,
		Status:  env.Status,
		Kind:    env.Kind,
		Started: start,
		Took:    time.Since(start).Milliseconds(),
	}
	if err := d.history.Append(run); err != nil {
		log.Errorf("failed to record run: %v\n", err)
	}
}

func unknownTask(id string) error {
	msg := fmt.Sprintf("unknown task: %q", id)
	if s := suggest(id); len(s) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(s, ", "))
	}
	return api.NewUnknownTaskError("%s", msg)
}

// suggest returns up to three registered identifiers close to id.
func suggest(id string) []string {
	if id == "" {
		return nil
	}
	matches := fuzzy.Find(strings.ToUpper(id), IDs())
	var ids []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		ids = append(ids, m.Str)
	}
	return ids
}
