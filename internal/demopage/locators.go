// Package demopage knows where things live on the resolver demo page and how to
// read or drive each section. It asserts nothing; checks compare the values.
package demopage

import (
	"fmt"
	"strings"
)

// Locators for the fixed page elements.
const (
	EmailInput    = "#inputEmail"
	PasswordInput = "#inputPassword"
	SignInButton  = "xpath=//button[@type='submit' and text()='Sign in']"

	ListSection = "#test-2-div"
	ListItems   = "xpath=//div[@id='test-2-div']//li"
	ItemBadge   = "xpath=.//span"

	DropdownButton = "#dropdownMenuButton"
	DropdownMenu   = ".dropdown-menu"

	ButtonsSection  = "#test-4-div"
	PrimaryButton   = "button.btn.btn-lg.btn-primary"
	SecondaryButton = "button.btn.btn-lg.btn-secondary"

	DelayedSection = "#test-5-div"
	DelayedButton  = "#test5-button"
	DelayedAlert   = "#test5-alert"

	Table = "#test-6-div table"
)

// ListItem locates the n-th (1-based) list item of the second section.
func ListItem(n int) string {
	return fmt.Sprintf("xpath=//div[@id='test-2-div']//li[%d]", n)
}

// MenuOption locates a link with the given label inside the opened dropdown menu.
func MenuOption(label string) string {
	return fmt.Sprintf("xpath=//div[contains(@class, 'dropdown-menu') and contains(@class, 'show')]//a[normalize-space()=%s]", xpathLiteral(label))
}

// CellXPath locates a table cell relative to its table by 0-based coordinates.
func CellXPath(row, col int) (string, error) {
	if row < 0 || col < 0 {
		return "", fmt.Errorf("cell coordinates must not be negative: (%d, %d)", row, col)
	}
	return fmt.Sprintf("xpath=./tbody/tr[%d]/td[%d]", row+1, col+1), nil
}

// StripBadge removes the badge text from an item's full text and trims the rest.
// The badge is the trailing child, so a suffix match is tried first; that keeps
// "List Item 2" intact when the badge happens to be "2".
func StripBadge(full, badge string) string {
	full = strings.TrimSpace(full)
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return full
	}
	if strings.HasSuffix(full, badge) {
		return strings.TrimSpace(strings.TrimSuffix(full, badge))
	}
	return strings.TrimSpace(strings.Replace(full, badge, "", 1))
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(quoted, `, "'", `) + ")"
}
