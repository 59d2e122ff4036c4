package controller

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	pageRegister     = "register"
	pageCardForm     = "cardForm"
	pageRegisterForm = "registerForm"
	pageDateForm     = "dateForm"
)

// Controller mediates between the ledger and the view.
type Controller struct {
	ctx     context.Context
	store   *ledger.Store
	app     *tview.Application
	pages   *tview.Pages
	header  *tview.Table
	table   *tview.Table
	content *CardContent
	events  map[rune]KeyEvent

	cardForm     *tview.Form
	titleField   *tview.InputField
	targetField  *tview.InputField
	colorField   *tview.InputField
	registerForm *tview.Form
	nameField    *tview.InputField
	dateForm     *tview.Form
	dateField    *tview.InputField
	presentBox   *tview.Checkbox
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// NewController creates a new Controller to run the app.
func NewController(ctx context.Context, store *ledger.Store) (*Controller, error) {
	c := Controller{
		ctx:     ctx,
		store:   store,
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		content: &CardContent{},
	}

	c.initEvents()

	c.pages.AddPage(pageRegister, c.getRegisterGrid(), true, true)
	c.pages.AddPage(pageCardForm, c.getFormGrid(pageCardForm, c.initCardForm()), true, false)
	c.pages.AddPage(pageRegisterForm, c.getFormGrid(pageRegisterForm, c.initRegisterForm()), true, false)
	c.pages.AddPage(pageDateForm, c.getFormGrid(pageDateForm, c.initDateForm()), true, false)

	c.showRegister()

	return &c, nil
}

// Go starts the app and blocks until it exits.
func (c *Controller) Go() error {
	if err := c.app.SetRoot(c.pages, true).SetFocus(c.table).Run(); err != nil {
		return fmt.Errorf("error running application: %w", err)
	}

	return nil
}

func (c *Controller) handleKeys(evt *tcell.EventKey) *tcell.EventKey {
	if evt.Key() != tcell.KeyRune {
		return evt
	}

	if k, ok := c.events[evt.Rune()]; ok {
		return k.Action(evt)
	}

	return evt
}

// selectedCard returns the card under the cursor in the active register.
func (c *Controller) selectedCard() (ledger.Card, bool) {
	row, _ := c.table.GetSelection()

	return c.content.cardForRow(row)
}

func (c *Controller) stop() {
	c.app.Stop()

	if err := c.store.Flush(c.ctx); err != nil {
		log.Warn().Err(err).Msg("error flushing attendance on exit")
	}

	log.Info().Msg("terminating application")
}
