package main

import (
	"context"
	"fmt"
	"time"

	"github.com/siegeon/tasksched/internal/facade"
	"github.com/siegeon/tasksched/internal/task"
)

// CreateCmd implements 'create'.
type CreateCmd struct {
	ID          string `arg:"" help:"Task id (a-z, 0-9, '.', '-', '_')"`
	Payload     string `required:"" help:"Evaluator payload (non-empty)"`
	Description string `help:"Free-text description"`
	Due         string `help:"Bundled schedule: RFC3339 due time (mutually exclusive with --repeats)"`
	Repeats     string `help:"Bundled schedule: repetition pattern (mutually exclusive with --due)"`
	NoAutoStart bool   `name:"no-auto-start" help:"Do not start the engine even if a schedule is bundled"`
}

func (c *CreateCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	in := facade.CreateInput{ID: c.ID, Description: c.Description, Payload: c.Payload, Repeats: c.Repeats}
	if c.Due != "" {
		due, err := time.Parse(time.RFC3339, c.Due)
		if err != nil {
			return fmt.Errorf("parse --due: %w", err)
		}
		in.Due = &due
	}
	if c.NoAutoStart {
		no := false
		in.AutoStart = &no
	}

	created, err := a.facade.Create(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Printf("created task %q\n", created.ID)
	return nil
}

// UpdateCmd implements 'update'.
type UpdateCmd struct {
	ID          string `arg:"" help:"Task id"`
	Payload     string `help:"New payload (omit to leave unchanged)"`
	Description string `help:"New description (omit to leave unchanged)"`
}

func (u *UpdateCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var payload, description *string
	if u.Payload != "" {
		payload = &u.Payload
	}
	if u.Description != "" {
		description = &u.Description
	}
	if err := a.facade.Update(context.Background(), u.ID, payload, description); err != nil {
		return err
	}
	fmt.Printf("updated task %q\n", u.ID)
	return nil
}

// DeleteCmd implements 'delete'.
type DeleteCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (d *DeleteCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.facade.Delete(context.Background(), d.ID); err != nil {
		return err
	}
	fmt.Printf("deleted task %q\n", d.ID)
	return nil
}

// GetCmd implements 'get'.
type GetCmd struct {
	ID        string `arg:"" help:"Task id"`
	Schedules bool   `help:"Include schedules"`
}

func (g *GetCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, schedules, err := a.facade.Get(context.Background(), g.ID, g.Schedules)
	if err != nil {
		return err
	}
	fmt.Printf("id=%s description=%q payload=%q created=%s\n", t.ID, t.Description, t.Payload, t.Created.Format(time.RFC3339))
	for _, s := range schedules {
		fmt.Printf("  schedule id=%d due=%s repeats=%q\n", s.ID, s.Due.Format(time.RFC3339), s.Repeats)
	}
	return nil
}

// ListCmd implements 'list'.
type ListCmd struct {
	Prefix string `help:"Prefix filter on id or description"`
	Offset int    `help:"Paging offset" default:"0"`
	Limit  int    `help:"Paging limit" default:"10"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	tasks, err := a.facade.List(context.Background(), task.Filter{Prefix: l.Prefix}, l.Offset, l.Limit)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		fmt.Printf("%s\t%s\t%s\n", t.ID, t.Description, t.Created.Format(time.RFC3339))
	}
	return nil
}

// CountCmd implements 'count'.
type CountCmd struct {
	Prefix string `help:"Prefix filter on id or description"`
}

func (c *CountCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	n, err := a.facade.Count(context.Background(), task.Filter{Prefix: c.Prefix})
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

// ScheduleCmd implements 'schedule'.
type ScheduleCmd struct {
	TaskID  string `arg:"" help:"Task id to schedule"`
	Due     string `help:"RFC3339 due time (mutually exclusive with --repeats)"`
	Repeats string `help:"Repetition pattern (mutually exclusive with --due)"`
}

func (s *ScheduleCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var due *time.Time
	if s.Due != "" {
		parsed, err := time.Parse(time.RFC3339, s.Due)
		if err != nil {
			return fmt.Errorf("parse --due: %w", err)
		}
		due = &parsed
	}

	id, err := a.facade.Schedule(context.Background(), s.TaskID, due, s.Repeats)
	if err != nil {
		return err
	}
	fmt.Printf("scheduled %d\n", id)
	return nil
}

// UnscheduleCmd implements 'unschedule'.
type UnscheduleCmd struct {
	ScheduleID int64 `arg:"" help:"Schedule id"`
}

func (u *UnscheduleCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.facade.Unschedule(context.Background(), u.ScheduleID); err != nil {
		return err
	}
	fmt.Printf("unscheduled %d\n", u.ScheduleID)
	return nil
}

// ExecuteCmd implements 'execute'.
type ExecuteCmd struct {
	ID string `arg:"" help:"Task id"`
}

func (e *ExecuteCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	result, err := a.facade.Execute(context.Background(), e.ID)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

// StatusCmd implements 'status': the earliest due schedule across the
// persistent store. running always reports false for a one-shot CLI
// invocation — only the serve process keeps the engine armed.
type StatusCmd struct{}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	a, err := openApp(root.Config, root.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	next, err := a.store.NextDue(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("running=%v\n", a.facade.Running())
	if next == nil {
		fmt.Println("next=none")
		return nil
	}
	fmt.Printf("next=%s task=%s\n", next.Due.Format(time.RFC3339), next.TaskID)
	return nil
}
