package demopage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/resolverqa/assessment/internal/browser"
)

// Page drives one open browser page showing the demo page.
type Page struct {
	page    playwright.Page
	url     string
	element time.Duration
	reveal  time.Duration
	expect  playwright.PlaywrightAssertions
	patient playwright.PlaywrightAssertions
}

// New wraps page. element bounds ordinary waits; reveal bounds the wait for the
// late-appearing button of the fifth section.
func New(page playwright.Page, url string, element, reveal time.Duration) *Page {
	return &Page{
		page:    page,
		url:     url,
		element: element,
		reveal:  reveal,
		expect:  playwright.NewPlaywrightAssertions(browser.Milliseconds(element)),
		patient: playwright.NewPlaywrightAssertions(browser.Milliseconds(reveal)),
	}
}

// URL is the address Open navigates to.
func (p *Page) URL() string {
	return p.url
}

// Open navigates to the demo page.
func (p *Page) Open() error {
	if _, err := p.page.Goto(p.url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", p.url, err)
	}
	return nil
}

func (p *Page) locate(selector string) playwright.Locator {
	return p.page.Locator(selector).First()
}

// present waits until selector is attached to the DOM.
func (p *Page) present(selector string) (playwright.Locator, error) {
	loc := p.locate(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(browser.Milliseconds(p.element)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s not present: %w", selector, err)
	}
	return loc, nil
}

// visible waits until selector is displayed.
func (p *Page) visible(selector string, within playwright.PlaywrightAssertions) (playwright.Locator, error) {
	loc := p.locate(selector)
	if err := within.Locator(loc).ToBeVisible(); err != nil {
		return nil, expired(err, "%s not visible", selector)
	}
	return loc, nil
}

// WaitVisible waits for selector to be displayed within the element timeout.
func (p *Page) WaitVisible(selector string) error {
	_, err := p.visible(selector, p.expect)
	return err
}

// FillLogin types the credentials into the login form.
func (p *Page) FillLogin(email, password string) error {
	emailField, err := p.visible(EmailInput, p.expect)
	if err != nil {
		return err
	}
	passwordField, err := p.visible(PasswordInput, p.expect)
	if err != nil {
		return err
	}
	if err := emailField.Fill(email); err != nil {
		return fmt.Errorf("failed to fill email: %w", err)
	}
	if err := passwordField.Fill(password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	return nil
}

// LoginValues reads back what the login fields currently hold.
func (p *Page) LoginValues() (email, password string, err error) {
	email, err = p.locate(EmailInput).InputValue()
	if err != nil {
		return "", "", fmt.Errorf("failed to read email: %w", err)
	}
	password, err = p.locate(PasswordInput).InputValue()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return email, password, nil
}

// SubmitLogin clicks "Sign in".
func (p *Page) SubmitLogin() error {
	button, err := p.visible(SignInButton, p.expect)
	if err != nil {
		return err
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to click sign in: %w", err)
	}
	return nil
}

// ListItemTexts returns the visible text of every item in the list group.
func (p *Page) ListItemTexts() ([]string, error) {
	if _, err := p.present(ListItems); err != nil {
		return nil, err
	}
	texts, err := p.page.Locator(ListItems).AllInnerTexts()
	if err != nil {
		return nil, fmt.Errorf("failed to read list items: %w", err)
	}
	return texts, nil
}

// ListItem returns the label and badge of the n-th (1-based) list item.
func (p *Page) ListItem(n int) (label, badge string, err error) {
	item, err := p.present(ListItem(n))
	if err != nil {
		return "", "", err
	}
	full, err := item.InnerText()
	if err != nil {
		return "", "", fmt.Errorf("failed to read list item %d: %w", n, err)
	}
	badge, err = item.Locator(ItemBadge).First().InnerText()
	if err != nil {
		return "", "", fmt.Errorf("failed to read badge of list item %d: %w", n, err)
	}
	badge = strings.TrimSpace(badge)
	return StripBadge(full, badge), badge, nil
}

// DropdownText returns the trimmed caption of the dropdown button.
func (p *Page) DropdownText() (string, error) {
	button, err := p.present(DropdownButton)
	if err != nil {
		return "", err
	}
	text, err := button.InnerText()
	if err != nil {
		return "", fmt.Errorf("failed to read dropdown button: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// OpenDropdown clicks the dropdown button and waits for the menu to show.
func (p *Page) OpenDropdown() error {
	button, err := p.present(DropdownButton)
	if err != nil {
		return err
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to open dropdown: %w", err)
	}
	_, err = p.visible(DropdownMenu, p.expect)
	return err
}

// ChooseOption clicks the labelled entry of the opened dropdown menu.
func (p *Page) ChooseOption(label string) error {
	option := p.locate(MenuOption(label))
	if err := p.expect.Locator(option).ToBeEnabled(); err != nil {
		return expired(err, "option %q not clickable", label)
	}
	if err := option.Click(); err != nil {
		return fmt.Errorf("failed to choose %q: %w", label, err)
	}
	return nil
}

// WaitDropdownText waits until the dropdown button reads want.
func (p *Page) WaitDropdownText(want string) error {
	if err := p.expect.Locator(p.locate(DropdownButton)).ToHaveText(want); err != nil {
		return expired(err, "dropdown did not change to %q", want)
	}
	return nil
}

// ButtonStates reports whether the primary and secondary buttons of the fourth
// section are enabled.
func (p *Page) ButtonStates() (primary, secondary bool, err error) {
	section, err := p.present(ButtonsSection)
	if err != nil {
		return false, false, err
	}
	primary, err = section.Locator(PrimaryButton).First().IsEnabled()
	if err != nil {
		return false, false, fmt.Errorf("failed to read primary button: %w", err)
	}
	secondary, err = section.Locator(SecondaryButton).First().IsEnabled()
	if err != nil {
		return false, false, fmt.Errorf("failed to read secondary button: %w", err)
	}
	return primary, secondary, nil
}

// ClickDelayedButton waits, within the reveal timeout, for the fifth section's
// button to show and clicks it.
func (p *Page) ClickDelayedButton() error {
	if _, err := p.present(DelayedSection); err != nil {
		return err
	}
	button, err := p.visible(DelayedButton, p.patient)
	if err != nil {
		return err
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to click delayed button: %w", err)
	}
	return nil
}

// AlertText waits for the fifth section's alert and returns its text.
func (p *Page) AlertText() (string, error) {
	alert, err := p.visible(DelayedAlert, p.expect)
	if err != nil {
		return "", err
	}
	text, err := alert.InnerText()
	if err != nil {
		return "", fmt.Errorf("failed to read alert: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// DelayedButtonEnabled reports whether the fifth section's button is enabled.
func (p *Page) DelayedButtonEnabled() (bool, error) {
	enabled, err := p.locate(DelayedButton).IsEnabled()
	if err != nil {
		return false, fmt.Errorf("failed to read delayed button: %w", err)
	}
	return enabled, nil
}

// CellValue returns the trimmed text of the table cell at 0-based (row, col).
func (p *Page) CellValue(row, col int) (string, error) {
	cellPath, err := CellXPath(row, col)
	if err != nil {
		return "", err
	}
	table, err := p.present(Table)
	if err != nil {
		return "", err
	}
	text, err := table.Locator(cellPath).First().InnerText()
	if err != nil {
		return "", fmt.Errorf("failed to read cell (%d, %d): %w", row, col, err)
	}
	return strings.TrimSpace(text), nil
}

// expired wraps a failed expect assertion. Assertions only fail once their
// timeout has run out, so the result always matches playwright.ErrTimeout.
func expired(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, playwright.ErrTimeout, err)
}
