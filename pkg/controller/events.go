package controller

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rs/zerolog/log"
)

// cardSizes is the order the card size shortcut cycles through.
func cardSizes() []ledger.CardSize {
	return []ledger.CardSize{ledger.CardSizeNormal, ledger.CardSizeSmall, ledger.CardSizeMini}
}

func (c *Controller) initEvents() {
	c.events = map[rune]KeyEvent{}

	c.initMarkEvents(c.events)
	c.initCardEvents(c.events)
	c.initRegisterEvents(c.events)
	c.initExitEvent(c.events)
}

func (c *Controller) initExitEvent(events map[rune]KeyEvent) {
	events['q'] = KeyEvent{
		Description: "Exit",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.stop()

			return nil
		},
	}
}

// getCardAction wraps an action on the selected card of the active register; it does
// nothing when no card is selected.
func (c *Controller) getCardAction(name string, action func(registerID, cardID int)) func(*tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		card, ok := c.selectedCard()
		if !ok {
			log.Debug().Msgf("%s: no card selected", name)

			return nil
		}

		registerID := c.store.ActiveRegister()

		log.Debug().Int("register", registerID).Int("card", card.ID).Msgf("%s '%s'", name, card.Title)
		action(registerID, card.ID)

		c.refresh()

		return nil
	}
}

func (c *Controller) initMarkEvents(events map[rune]KeyEvent) {
	events['p'] = KeyEvent{
		Description: "Mark Present",
		Action:      c.getCardAction("mark present", c.store.MarkPresent),
	}

	events['a'] = KeyEvent{
		Description: "Mark Absent",
		Action:      c.getCardAction("mark absent", c.store.MarkAbsent),
	}

	events['u'] = KeyEvent{
		Description: "Undo",
		Action:      c.getCardAction("undo", c.store.UndoChanges),
	}

	events['d'] = KeyEvent{
		Description: "Mark on Date",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if _, ok := c.selectedCard(); ok {
				c.switchToForm(pageDateForm)
			}

			return nil
		},
	}
}

func (c *Controller) initCardEvents(events map[rune]KeyEvent) {
	events['n'] = KeyEvent{
		Description: "New Card",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if _, ok := c.store.Register(c.store.ActiveRegister()); ok {
				c.switchToForm(pageCardForm)
			}

			return nil
		},
	}

	events['x'] = KeyEvent{
		Description: "Remove Card",
		Action:      c.getCardAction("remove card", c.store.RemoveCard),
	}

	events['c'] = KeyEvent{
		Description: "Clear Attendance",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.ClearCardsAttendance(c.store.ActiveRegister())
			c.refresh()

			return nil
		},
	}

	events['s'] = KeyEvent{
		Description: "Card Size",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.cycleCardSize()

			return nil
		},
	}
}

func (c *Controller) initRegisterEvents(events map[rune]KeyEvent) {
	events['r'] = KeyEvent{
		Description: "New Register",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.switchToForm(pageRegisterForm)

			return nil
		},
	}

	events['D'] = KeyEvent{
		Description: "Delete Register",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.RemoveRegister(c.store.ActiveRegister())
			c.refresh()

			return nil
		},
	}

	events[']'] = KeyEvent{
		Description: "Next Register",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.stepRegister(1)

			return nil
		},
	}

	events['['] = KeyEvent{
		Description: "Previous Register",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.stepRegister(-1)

			return nil
		},
	}

	events['Y'] = KeyEvent{
		Description: "Copy From This Register",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.ChangeCopyRegister(c.store.ActiveRegister())
			c.refresh()

			return nil
		},
	}

	events['P'] = KeyEvent{
		Description: "Paste Copied Cards",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.CopyCards(c.store.ActiveRegister())
			c.refresh()

			return nil
		},
	}
}

func (c *Controller) cycleCardSize() {
	reg, ok := c.store.Register(c.store.ActiveRegister())
	if !ok {
		return
	}

	sizes := cardSizes()
	next := sizes[0]

	for i, size := range sizes {
		if size == reg.CardSize {
			next = sizes[(i+1)%len(sizes)]

			break
		}
	}

	c.store.SetRegisterCardSize(c.store.ActiveRegister(), next)
	c.refresh()
}
