package report

import (
	"fmt"
	"time"
)

// Case records one running test case: its steps, attachments and outcome.
// It is not safe for concurrent use.
type Case struct {
	w      *Writer
	result Result
	active int
	now    func() time.Time

	// Classify maps a failed step's error to its status; nil means failed.
	Classify func(error) string
}

// Start begins a case named name under the given full name.
func (w *Writer) Start(fullName, name string, labels ...Label) *Case {
	c := &Case{w: w, active: -1, now: time.Now}
	c.result = Result{
		FullName:    fullName,
		Name:        name,
		HistoryID:   historyID(fullName),
		Stage:       "running",
		Start:       c.now().UnixMilli(),
		Labels:      append([]Label{{Name: "framework", Value: "playwright-go"}}, labels...),
		Steps:       []Step{},
		Attachments: []Attachment{},
	}
	return c
}

// Describe sets the case description.
func (c *Case) Describe(description string) {
	c.result.Description = description
}

// Step runs fn as a named step. The step fails with fn's error, which is
// returned unchanged. Steps do not nest; a step started inside another is
// recorded after it. A panic in fn marks the step failed and is re-raised.
func (c *Case) Step(name string, fn func() error) error {
	step := Step{
		Name:        name,
		Stage:       "running",
		Start:       c.now().UnixMilli(),
		Steps:       []Step{},
		Attachments: []Attachment{},
	}
	c.result.Steps = append(c.result.Steps, step)
	idx := len(c.result.Steps) - 1

	outer := c.active
	c.active = idx
	finished := false
	defer func() {
		c.active = outer
		if finished {
			return
		}
		if p := recover(); p != nil {
			c.stamp(idx, fmt.Errorf("step %q panicked: %v", name, p))
			panic(p)
		}
		c.stamp(idx, fmt.Errorf("step %q did not return", name))
	}()

	err := fn()
	finished = true
	c.stamp(idx, err)
	return err
}

func (c *Case) stamp(idx int, err error) {
	s := &c.result.Steps[idx]
	s.Stage = "finished"
	s.Stop = c.now().UnixMilli()
	if err == nil {
		s.Status = StatusPassed
		return
	}
	s.Status = StatusFailed
	if c.Classify != nil {
		s.Status = c.Classify(err)
	}
	s.StatusDetails.Message = err.Error()
}

// AttachText attaches a plain text value to the running step, or to the case
// when no step is running.
func (c *Case) AttachText(name, text string) error {
	return c.attach(name, "text/plain", "txt", []byte(text))
}

// AttachPNG attaches an image, usually a screenshot.
func (c *Case) AttachPNG(name string, data []byte) error {
	return c.attach(name, "image/png", "png", data)
}

func (c *Case) attach(name, mimeType, ext string, data []byte) error {
	a, err := c.w.WriteAttachment(name, mimeType, ext, data)
	if err != nil {
		return err
	}
	if c.active >= 0 {
		s := &c.result.Steps[c.active]
		s.Attachments = append(s.Attachments, a)
		return nil
	}
	c.result.Attachments = append(c.result.Attachments, a)
	return nil
}

// Finish stamps the outcome and writes the result file.
func (c *Case) Finish(status string, cause error) (Result, error) {
	c.result.Status = status
	c.result.Stage = "finished"
	c.result.Stop = c.now().UnixMilli()
	if cause != nil {
		c.result.StatusDetails.Message = cause.Error()
	}
	if err := c.w.WriteResult(&c.result); err != nil {
		return c.result, err
	}
	return c.result, nil
}
