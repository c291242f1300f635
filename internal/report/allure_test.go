package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResults(t *testing.T, dir string) []Result {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*-result.json"))
	require.NoError(t, err)

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		var r Result
		require.NoError(t, json.Unmarshal(data, &r))
		assert.Equal(t, r.UUID+"-result.json", filepath.Base(m))
		results = append(results, r)
	}
	return results
}

func TestNewWriterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "allure-results")

	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())
	assert.DirExists(t, dir)

	_, err = NewWriter("")
	assert.Error(t, err)
}

func TestWriteResultFillsIdentity(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	r := &Result{FullName: "assessment.table-cell", Name: "Table cell", Status: StatusPassed}
	require.NoError(t, w.WriteResult(r))

	assert.NotEmpty(t, r.UUID)
	assert.Equal(t, historyID("assessment.table-cell"), r.HistoryID)
	assert.Equal(t, "finished", r.Stage)

	results := readResults(t, dir)
	require.Len(t, results, 1)
	assert.Equal(t, "Table cell", results[0].Name)
}

func TestHistoryIDDeterministic(t *testing.T) {
	assert.Equal(t, historyID("a.b"), historyID("a.b"))
	assert.NotEqual(t, historyID("a.b"), historyID("a.c"))
	assert.Len(t, historyID("anything"), 8)
}

func TestWriteAttachment(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	a, err := w.WriteAttachment("Badge value", "text/plain", ".txt", []byte("6"))
	require.NoError(t, err)
	assert.Equal(t, "Badge value", a.Name)
	assert.Equal(t, "text/plain", a.Type)
	assert.True(t, strings.HasSuffix(a.Source, "-attachment.txt"), a.Source)

	data, err := os.ReadFile(filepath.Join(dir, a.Source))
	require.NoError(t, err)
	assert.Equal(t, "6", string(data))

	other, err := w.WriteAttachment("Badge value", "text/plain", "txt", []byte("6"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Source, other.Source)
}

func TestWriteEnvironmentSorted(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteEnvironment(map[string]string{
		"headless": "true",
		"base_url": "http://localhost/",
		"browser":  "chromium",
	}))

	data, err := os.ReadFile(filepath.Join(dir, "environment.properties"))
	require.NoError(t, err)
	assert.Equal(t, "base_url=http://localhost/\nbrowser=chromium\nheadless=true\n", string(data))
}

func TestWriteCategoriesAndExecutor(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteCategories(DefaultCategories()))
	require.NoError(t, w.WriteExecutor(Executor{Name: "assess", Type: "cli", BuildName: "dev"}))

	var categories []Category
	data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &categories))
	require.NotEmpty(t, categories)
	for _, c := range categories {
		assert.NotEmpty(t, c.MatchedStatuses, c.Name)
	}

	var executor Executor
	data, err = os.ReadFile(filepath.Join(dir, "executor.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &executor))
	assert.Equal(t, "assess", executor.Name)
	assert.Equal(t, "dev", executor.BuildName)
}

func TestCaseRecordsStepsAndAttachments(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	c := w.Start("assessment.list-group", "List group", Label{Name: "suite", Value: "demo page"})
	c.Describe("second item shows badge 6")

	require.NoError(t, c.Step("Read items", func() error {
		return c.AttachText("List texts", "List Item 1 6")
	}))
	require.NoError(t, c.AttachPNG("Screenshot", []byte{0x89, 'P', 'N', 'G'}))

	res, err := c.Finish(StatusPassed, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPassed, res.Status)
	assert.Equal(t, "finished", res.Stage)
	assert.Equal(t, "second item shows badge 6", res.Description)
	assert.GreaterOrEqual(t, res.Stop, res.Start)
	assert.Contains(t, res.Labels, Label{Name: "suite", Value: "demo page"})
	assert.Contains(t, res.Labels, Label{Name: "framework", Value: "playwright-go"})

	require.Len(t, res.Steps, 1)
	assert.Equal(t, StatusPassed, res.Steps[0].Status)
	require.Len(t, res.Steps[0].Attachments, 1)
	assert.Equal(t, "List texts", res.Steps[0].Attachments[0].Name)

	require.Len(t, res.Attachments, 1)
	assert.Equal(t, "image/png", res.Attachments[0].Type)
	assert.FileExists(t, filepath.Join(dir, res.Attachments[0].Source))

	results := readResults(t, dir)
	require.Len(t, results, 1)
	assert.Equal(t, res.UUID, results[0].UUID)
}

func TestCaseFailedStep(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	c := w.Start("assessment.dropdown", "Dropdown")
	boom := errors.New(`expected "Option 3", got "Option 1"`)

	err = c.Step("Check caption", func() error { return boom })
	assert.Same(t, boom, err)

	res, err := c.Finish(StatusFailed, err)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, boom.Error(), res.StatusDetails.Message)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Equal(t, boom.Error(), res.Steps[0].StatusDetails.Message)
}

func TestCaseNestedStepIsFlattened(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	c := w.Start("x", "x")
	require.NoError(t, c.Step("outer", func() error {
		if err := c.Step("inner", func() error { return nil }); err != nil {
			return err
		}
		return c.AttachText("note", "after inner")
	}))

	res, err := c.Finish(StatusPassed, nil)
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "outer", res.Steps[0].Name)
	assert.Equal(t, "inner", res.Steps[1].Name)
	require.Len(t, res.Steps[0].Attachments, 1, "attachment goes to the step still running")
}

func TestWriteResultRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	err = w.WriteResult(&Result{FullName: "assessment.dropdown", Name: "Dropdown", Status: "exploded"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assessment.dropdown")

	err = w.WriteResult(&Result{FullName: "assessment.dropdown", Status: StatusPassed})
	require.Error(t, err, "a result needs a name")

	assert.Empty(t, readResults(t, dir))
}

func TestValidateResult(t *testing.T) {
	valid := `{"uuid":"u","historyId":"h","fullName":"f","name":"n","status":"broken","stage":"finished","start":1,"stop":2,
		"steps":[{"name":"s","status":"failed","stage":"finished","steps":[],"attachments":[{"name":"a","source":"x.png","type":"image/png"}]}]}`
	assert.NoError(t, ValidateResult([]byte(valid)))

	missingStop := `{"uuid":"u","historyId":"h","fullName":"f","name":"n","status":"passed","stage":"finished","start":1}`
	err := ValidateResult([]byte(missingStop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop")

	assert.Error(t, ValidateResult([]byte("not json")))
}

func TestCaseStepPanicIsStamped(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	c := w.Start("assessment.boom", "Boom")
	assert.PanicsWithValue(t, "nil locator", func() {
		_ = c.Step("explodes", func() error { panic("nil locator") })
	})
	require.NoError(t, c.AttachText("after", "goes to the case"))

	res, err := c.Finish(StatusFailed, errors.New("check boom panicked: nil locator"))
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, StatusFailed, res.Steps[0].Status)
	assert.Equal(t, "finished", res.Steps[0].Stage)
	assert.Contains(t, res.Steps[0].StatusDetails.Message, "nil locator")
	require.Len(t, res.Attachments, 1, "no step is running after the panic")
}

func TestCaseStepClassify(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	c := w.Start("assessment.delayed-button", "Delayed button")
	c.Classify = func(error) string { return StatusBroken }

	err = c.Step("Wait for the button", func() error { return errors.New("timeout") })
	require.Error(t, err)

	res, err := c.Finish(StatusBroken, err)
	require.NoError(t, err)
	assert.Equal(t, StatusBroken, res.Steps[0].Status)
}
