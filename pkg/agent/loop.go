// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/ospilot/ospilot/pkg/bus"
	"github.com/ospilot/ospilot/pkg/device"
	"github.com/ospilot/ospilot/pkg/dialect"
	"github.com/ospilot/ospilot/pkg/logger"
	"github.com/ospilot/ospilot/pkg/providers"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
	"github.com/ospilot/ospilot/pkg/task"
)

// Policies for a model turn that contains no action.
const (
	OnNoActionContinue = "continue"
	OnNoActionFinish   = "finish"
)

// Config bounds one task run.
type Config struct {
	MaxSteps            int
	ImagesToKeep        int
	MinRemovalThreshold int
	MaxAttempts         int
	RetryBackoff        time.Duration
	StepDelay           time.Duration
	OnNoAction          string
}

func (c Config) withDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 30
	}
	if c.ImagesToKeep < 0 {
		c.ImagesToKeep = 0
	}
	if c.MinRemovalThreshold <= 0 {
		c.MinRemovalThreshold = 2
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.OnNoAction == "" {
		c.OnNoAction = OnNoActionContinue
	}
	return c
}

// Runner drives one task through bounded observe/decide/act steps: trim
// the history, ask the model, canonicalize its actions, execute them,
// and feed the fresh screenshot back in.
type Runner struct {
	client     providers.ModelClient
	parser     dialect.Parser
	dev        device.Device
	dispatcher *device.Dispatcher
	store      *task.Store
	events     *bus.EventBus
	cfg        Config
}

// NewRunner wires a runner. events may be nil when nobody is watching.
func NewRunner(client providers.ModelClient, parser dialect.Parser, dev device.Device, store *task.Store, events *bus.EventBus, cfg Config) *Runner {
	return &Runner{
		client:     client,
		parser:     parser,
		dev:        dev,
		dispatcher: device.NewDispatcher(dev),
		store:      store,
		events:     events,
		cfg:        cfg.withDefaults(),
	}
}

func (r *Runner) publish(t *task.Task, eventType string, step int, action, message string) {
	if r.events == nil {
		return
	}
	r.events.Publish(bus.Event{
		TaskID:    t.ID,
		Type:      eventType,
		Step:      step,
		Action:    action,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (r *Runner) fail(t *task.Task, reason string) {
	t.Status = task.StatusFailed
	t.Error = reason
	t.PostMessage("assistant", "Error: "+reason)
	if err := r.store.Save(t); err != nil {
		logger.ErrorCF("agent", "Failed to save failed task", map[string]interface{}{
			"task":  t.ID,
			"error": err.Error(),
		})
	}
	r.publish(t, bus.EventTaskFailed, 0, "", reason)
}

// Solve runs the step loop until a terminal result, cancellation,
// failure, or step exhaustion. The outcome lands on the task itself;
// the returned error covers only infrastructure faults that prevented
// running at all.
func (r *Runner) Solve(ctx context.Context, t *task.Task) error {
	if err := r.store.Refresh(t); err != nil {
		return err
	}
	if t.Status == task.StatusCanceling || t.Status == task.StatusCanceled {
		t.Status = task.StatusCanceled
		t.PostMessage("assistant", "Task canceled")
		if err := r.store.Save(t); err != nil {
			return err
		}
		r.publish(t, bus.EventTaskCanceled, 0, "", "")
		return nil
	}

	t.Status = task.StatusRunning
	t.EnsureThread("debug")
	t.PostMessage("assistant", fmt.Sprintf("Starting task '%s'", t.Description))
	if err := r.store.Save(t); err != nil {
		return err
	}
	r.publish(t, bus.EventTaskStarted, 0, "", t.Description)

	info, err := r.dev.Info(ctx)
	if err != nil {
		r.fail(t, fmt.Sprintf("query device info: %v", err))
		return nil
	}
	system := systemPrompt(info)

	history := []providers.Message{
		protocoltypes.TextMessage("user", t.Description),
	}

	logger.InfoCF("agent", "Task started", map[string]interface{}{
		"task":      t.ID,
		"dialect":   r.parser.Name(),
		"max_steps": r.cfg.MaxSteps,
	})

	for step := 1; step <= r.cfg.MaxSteps; step++ {
		r.publish(t, bus.EventStepStarted, step, "", "")
		logger.DebugCF("agent", "Step started", map[string]interface{}{
			"task": t.ID,
			"step": step,
		})

		var done bool
		err := Retry(ctx, r.cfg.MaxAttempts, r.cfg.RetryBackoff, func() error {
			d, stepErr := r.step(ctx, t, system, &history, step)
			done = d
			return stepErr
		})
		if err != nil {
			r.fail(t, err.Error())
			return nil
		}
		if done {
			return nil
		}

		if r.cfg.StepDelay > 0 {
			select {
			case <-time.After(r.cfg.StepDelay):
			case <-ctx.Done():
				r.fail(t, ctx.Err().Error())
				return nil
			}
		}
	}

	r.fail(t, "max steps reached without a result")
	return nil
}

// step runs one observe/decide/act iteration. Returns done=true when the
// task reached a terminal state. Any error aborts this attempt; the
// retry wrapper decides whether to try again.
func (r *Runner) step(ctx context.Context, t *task.Task, system string, history *[]providers.Message, stepNum int) (bool, error) {
	// External cancellation lands on disk; pick it up before spending
	// a model call.
	if err := r.store.Refresh(t); err != nil {
		return false, err
	}
	if t.Status == task.StatusCanceling || t.Status == task.StatusCanceled {
		if t.Status == task.StatusCanceling {
			t.Status = task.StatusCanceled
			t.PostMessage("assistant", "Task canceled")
			if err := r.store.Save(t); err != nil {
				return false, err
			}
		}
		r.publish(t, bus.EventTaskCanceled, stepNum, "", "")
		return true, nil
	}

	if removed := TrimImages(*history, r.cfg.ImagesToKeep, r.cfg.MinRemovalThreshold); removed > 0 {
		r.publish(t, bus.EventContextTrimmed, stepNum, "", fmt.Sprintf("removed %d screenshots", removed))
	}

	resp, err := r.client.Generate(ctx, system, *history)
	if err != nil {
		return false, fmt.Errorf("model call: %w", err)
	}

	parsed, err := r.parser.Parse(resp)
	if err != nil {
		return false, err
	}

	*history = append(*history, providers.Message{
		Role:      "assistant",
		Content:   resp.Text,
		ToolCalls: resp.ToolCalls,
	})

	if parsed.Thought != "" {
		t.PostMessageThread("assistant", parsed.Thought, "debug")
		r.publish(t, bus.EventThought, stepNum, "", parsed.Thought)
	}

	if len(parsed.Actions) == 0 {
		if r.cfg.OnNoAction == OnNoActionFinish {
			t.Status = task.StatusFinished
			t.PostMessage("assistant", "No further action proposed, finishing task")
			if err := r.store.Save(t); err != nil {
				return false, err
			}
			r.publish(t, bus.EventTaskFinished, stepNum, "", "")
			return true, nil
		}
		logger.DebugCF("agent", "No action in response, continuing", map[string]interface{}{
			"task": t.ID,
			"step": stepNum,
		})
		return false, nil
	}

	usage := task.TokenUsage{}
	if resp.Usage != nil {
		usage = task.TokenUsage{In: resp.Usage.InputTokens, Out: resp.Usage.OutputTokens}
	}

	for i, a := range parsed.Actions {
		if a.IsTerminal() {
			value, _ := a.String("value")
			t.PostMessage("assistant", "I think the task is done, please review the result: "+value)
			t.Status = task.StatusFinished

			shot, err := r.dev.Screenshot(ctx)
			if err != nil {
				return false, fmt.Errorf("final screenshot: %w", err)
			}
			t.RecordStep(task.Step{
				Action:     a,
				Thought:    parsed.Thought,
				Screenshot: shot.Data,
				Usage:      usage,
			})
			if err := r.store.Save(t); err != nil {
				return false, err
			}
			r.publish(t, bus.EventTaskFinished, stepNum, a.Name, value)
			return true, nil
		}

		result, err := r.dispatcher.Dispatch(ctx, a)
		if err != nil {
			return false, err
		}
		if result.Output != "" {
			t.PostMessageThread("assistant", "Action output: "+result.Output, "debug")
		}

		t.RecordStep(task.Step{
			Action:     a,
			Thought:    parsed.Thought,
			Screenshot: result.Screenshot.Data,
			Usage:      usage,
		})
		r.publish(t, bus.EventActionTaken, stepNum, a.Name, "")

		callID := ""
		if i < len(resp.ToolCalls) {
			callID = resp.ToolCalls[i].ID
		}
		*history = append(*history, protocoltypes.ScreenshotMessage(callID, result.Screenshot.MediaType, result.Screenshot.Data))
	}

	if err := r.store.Save(t); err != nil {
		return false, err
	}
	return false, nil
}

func systemPrompt(info *device.Info) string {
	return fmt.Sprintf(`You are operating a Linux desktop of screen size %dx%d through a computer-use tool.
Take a screenshot whenever you are unsure what the screen shows.
Use the mouse and keyboard actions to accomplish the task; everything, including terminals and editors, is driven through them.
When the task is complete, report the final result.`, info.ScreenWidth, info.ScreenHeight)
}
