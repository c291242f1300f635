package assessment

import (
	"fmt"
	"strings"

	"github.com/resolverqa/assessment/internal/demopage"
)

const (
	wantListItems   = 3
	wantSecondLabel = "List Item 2"
	wantSecondBadge = "6"
	defaultOption   = "Option 1"
	chosenOption    = "Option 3"
	wantAlert       = "You clicked a button!"
	cellRow         = 2
	cellCol         = 2
	wantCell        = "Ventosanzap"
)

func openPage(s *Scenario) error {
	return s.Step("Navigate to the home page", s.Page.Open)
}

func checkLoginForm(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}
	fields := []struct {
		step     string
		selector string
	}{
		{"Email input is displayed", demopage.EmailInput},
		{"Password input is displayed", demopage.PasswordInput},
		{"Sign in button is displayed", demopage.SignInButton},
	}
	for _, f := range fields {
		if err := s.Step(f.step, func() error { return s.Page.WaitVisible(f.selector) }); err != nil {
			return err
		}
	}

	email, password := s.Credentials.Email, s.Credentials.Password
	err := s.Step("Enter email and password", func() error {
		if err := s.Page.FillLogin(email, password); err != nil {
			return err
		}
		gotEmail, gotPassword, err := s.Page.LoginValues()
		if err != nil {
			return err
		}
		if err := expect("email field", email, gotEmail); err != nil {
			return err
		}
		return expect("password field", password, gotPassword)
	})
	if err != nil {
		return err
	}

	return s.Step("Click sign in", s.Page.SubmitLogin)
}

func checkListGroup(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}

	err := s.Step("List group has three items", func() error {
		texts, err := s.Page.ListItemTexts()
		if err != nil {
			return err
		}
		s.Attach("List texts", strings.Join(texts, "\n"))
		return expect("list item count", wantListItems, len(texts))
	})
	if err != nil {
		return err
	}

	var label, badge string
	err = s.Step("Second item reads \"List Item 2\"", func() error {
		var err error
		label, badge, err = s.Page.ListItem(2)
		if err != nil {
			return err
		}
		s.Attach("Second list item", label)
		return expect("second list item", wantSecondLabel, label)
	})
	if err != nil {
		return err
	}

	return s.Step("Second item badge is 6", func() error {
		s.Attach("Badge value", badge)
		return expect("second list item badge", wantSecondBadge, badge)
	})
}

func checkDropdown(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}

	err := s.Step("Dropdown defaults to \"Option 1\"", func() error {
		text, err := s.Page.DropdownText()
		if err != nil {
			return err
		}
		return expect("dropdown default", defaultOption, text)
	})
	if err != nil {
		return err
	}

	if err := s.Step("Open the dropdown menu", s.Page.OpenDropdown); err != nil {
		return err
	}

	return s.Step("Select \"Option 3\"", func() error {
		if err := s.Page.ChooseOption(chosenOption); err != nil {
			return err
		}
		if err := s.Page.WaitDropdownText(chosenOption); err != nil {
			return err
		}
		text, err := s.Page.DropdownText()
		if err != nil {
			return err
		}
		s.Attach("Updated option", text)
		return expect("dropdown selection", chosenOption, text)
	})
}

func checkButtonStates(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}

	var primary, secondary bool
	err := s.Step("Locate the buttons", func() error {
		var err error
		primary, secondary, err = s.Page.ButtonStates()
		return err
	})
	if err != nil {
		return err
	}

	if err := s.Step("Primary button is enabled", func() error {
		return expect("primary button enabled", true, primary)
	}); err != nil {
		return err
	}
	return s.Step("Secondary button is disabled", func() error {
		return expect("secondary button enabled", false, secondary)
	})
}

func checkDelayedButton(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}

	if err := s.Step("Wait for the button and click it", s.Page.ClickDelayedButton); err != nil {
		return err
	}

	err := s.Step("Success message is displayed", func() error {
		text, err := s.Page.AlertText()
		if err != nil {
			return err
		}
		return expect("alert text", wantAlert, text)
	})
	if err != nil {
		return err
	}

	return s.Step("Button is now disabled", func() error {
		enabled, err := s.Page.DelayedButtonEnabled()
		if err != nil {
			return err
		}
		return expect("delayed button enabled", false, enabled)
	})
}

func checkTableCell(s *Scenario) error {
	if err := openPage(s); err != nil {
		return err
	}

	var value string
	err := s.Step(fmt.Sprintf("Read cell (%d, %d)", cellRow, cellCol), func() error {
		var err error
		value, err = s.Page.CellValue(cellRow, cellCol)
		return err
	})
	if err != nil {
		return err
	}

	return s.Step("Cell reads \"Ventosanzap\"", func() error {
		return expect("cell value", wantCell, value)
	})
}
