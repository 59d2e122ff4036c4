package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

func formTitle(name string) string {
	switch name {
	case pageCardForm:
		return "New Card"
	case pageRegisterForm:
		return "New Register"
	default:
		return "Mark on Date"
	}
}

func (c *Controller) switchToForm(name string) {
	var form *tview.Form

	switch name {
	case pageCardForm:
		form = c.cardForm
		c.titleField.SetText("")
		c.targetField.SetText(strconv.Itoa(c.store.DefaultTarget()))
		c.colorField.SetText("")
	case pageRegisterForm:
		form = c.registerForm
		c.nameField.SetText("")
	case pageDateForm:
		form = c.dateForm
		c.dateField.SetText(time.Now().Format(dateLayout))
		c.presentBox.SetChecked(true)
	}

	form.SetFocus(0)

	c.app.SetInputCapture(nil)
	c.pages.SwitchToPage(name)
	c.app.SetFocus(form)
}

func (c *Controller) getFormGrid(name string, form *tview.Form) *tview.Grid {
	grid := tview.NewGrid().SetBorders(true).SetRows(2, 0)

	header := tview.NewTable().SetBorders(false).SetSelectable(false, false)
	header.SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", formTitle(name))))
	header.SetCell(1, 0, tview.NewTableCell(fmt.Sprintf("[orange]<%s>[white] Cancel", tcell.KeyNames[tcell.KeyEscape])))

	form.SetCancelFunc(c.showRegister)

	grid.AddItem(header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(form, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) initCardForm() *tview.Form {
	titleMax := 50
	numberMax := 4
	colorMax := 20

	c.cardForm = tview.NewForm().
		AddInputField("Title", "", titleMax, nil, nil).
		AddInputField("Target %", "", numberMax, tview.InputFieldInteger, nil).
		AddInputField("Tag color", "", colorMax, nil, nil)

	c.titleField, _ = c.cardForm.GetFormItemByLabel("Title").(*tview.InputField)
	c.targetField, _ = c.cardForm.GetFormItemByLabel("Target %").(*tview.InputField)
	c.colorField, _ = c.cardForm.GetFormItemByLabel("Tag color").(*tview.InputField)

	c.cardForm.AddButton("Save", func() {
		if err := c.saveCard(); err != nil {
			log.Warn().Err(err).Msg("error saving the new card")

			return
		}

		c.showRegister()
	})

	return c.cardForm
}

// saveCard adds a card built from the card form to the active register.
func (c *Controller) saveCard() error {
	title := strings.TrimSpace(c.titleField.GetText())
	if title == "" {
		return errors.New("card title is required")
	}

	target, err := strconv.Atoi(c.targetField.GetText())
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", c.targetField.GetText(), err)
	}

	registerID := c.store.ActiveRegister()
	card := ledger.NewCard(c.store.NextCardID(registerID), title, target, strings.TrimSpace(c.colorField.GetText()))

	log.Debug().Int("register", registerID).Int("card", card.ID).Msgf("adding card '%s'", title)
	c.store.AddCard(registerID, card)

	// select the new card
	c.table.Select(c.content.GetRowCount(), 0)

	return nil
}

func (c *Controller) initRegisterForm() *tview.Form {
	nameMax := 50

	c.registerForm = tview.NewForm().
		AddInputField("Name", "", nameMax, nil, nil)

	c.nameField, _ = c.registerForm.GetFormItemByLabel("Name").(*tview.InputField)

	c.registerForm.AddButton("Save", func() {
		if err := c.saveRegister(); err != nil {
			log.Warn().Err(err).Msg("error saving the new register")

			return
		}

		c.showRegister()
	})

	return c.registerForm
}

// saveRegister creates a register from the register form and makes it active.
func (c *Controller) saveRegister() error {
	name := strings.TrimSpace(c.nameField.GetText())
	if name == "" {
		return errors.New("register name is required")
	}

	id := c.store.NextRegisterID()

	log.Debug().Int("register", id).Msgf("adding register '%s'", name)
	c.store.AddRegister(id, name)
	c.store.SetActiveRegister(id)

	c.table.Select(1, 0)

	return nil
}

func (c *Controller) initDateForm() *tview.Form {
	c.dateForm = tview.NewForm().
		AddInputField("Date", "", len(dateLayout), nil, nil).
		AddCheckbox("Present", true, nil)

	c.dateField, _ = c.dateForm.GetFormItemByLabel("Date").(*tview.InputField)
	c.presentBox, _ = c.dateForm.GetFormItemByLabel("Present").(*tview.Checkbox)

	c.dateForm.AddButton("Save", func() {
		if err := c.saveDatedMarking(); err != nil {
			log.Warn().Err(err).Msg("error saving the backdated marking")

			return
		}

		c.showRegister()
	})

	return c.dateForm
}

// saveDatedMarking marks the selected card at the date entered in the date form.
func (c *Controller) saveDatedMarking() error {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(c.dateField.GetText()), time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", c.dateField.GetText(), err)
	}

	card, ok := c.selectedCard()
	if !ok {
		return errors.New("no card selected")
	}

	registerID := c.store.ActiveRegister()

	if c.presentBox.IsChecked() {
		c.store.MarkPresentWithDate(date, card.ID, registerID)
	} else {
		c.store.MarkAbsentWithDate(date, card.ID, registerID)
	}

	return nil
}
