// Package assessment holds the demo page checks and the runner that executes
// them one browser session at a time.
package assessment

import (
	"fmt"
	"sort"
	"strings"
)

// Check is one straight-line UI check.
type Check struct {
	ID          string
	Number      int
	Title       string
	Description string
	Run         func(s *Scenario) error
}

// Catalog returns the checks in execution order.
func Catalog() []Check {
	return []Check{
		{
			ID:          "login-form",
			Number:      1,
			Title:       "Verify login form presence and input",
			Description: "The email field, password field and sign in button are shown and the fields accept input.",
			Run:         checkLoginForm,
		},
		{
			ID:          "list-group",
			Number:      2,
			Title:       "Verify list group values",
			Description: "The list group has three items; the second reads \"List Item 2\" with badge 6.",
			Run:         checkListGroup,
		},
		{
			ID:          "dropdown",
			Number:      3,
			Title:       "Verify default dropdown selection and change it",
			Description: "\"Option 1\" is selected by default and choosing \"Option 3\" updates the button.",
			Run:         checkDropdown,
		},
		{
			ID:          "button-states",
			Number:      4,
			Title:       "Verify button states",
			Description: "The primary button is enabled and the secondary button is disabled.",
			Run:         checkButtonStates,
		},
		{
			ID:          "delayed-button",
			Number:      5,
			Title:       "Wait for the delayed button, click it and verify the message",
			Description: "The late button appears, clicking it shows the success alert and disables the button.",
			Run:         checkDelayedButton,
		},
		{
			ID:          "table-cell",
			Number:      6,
			Title:       "Verify a table cell value",
			Description: "The cell at row 2, column 2 of the grid reads \"Ventosanzap\".",
			Run:         checkTableCell,
		},
	}
}

// Select returns the checks named by ids in catalogue order. No ids selects
// every check.
func Select(ids []string) ([]Check, error) {
	all := Catalog()
	if len(ids) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		wanted[id] = true
	}
	if len(wanted) == 0 {
		return all, nil
	}

	var selected []Check
	for _, c := range all {
		if wanted[c.ID] {
			selected = append(selected, c)
			delete(wanted, c.ID)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for id := range wanted {
			unknown = append(unknown, id)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

// IDs lists the catalogue ids.
func IDs() []string {
	all := Catalog()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	return ids
}
