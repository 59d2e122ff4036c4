package controller

import (
	"fmt"
	"sort"

	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const shortcutColumns = 3

func (c *Controller) getRegisterGrid() *tview.Grid {
	c.header = tview.NewTable().SetBorders(false).SetSelectable(false, false)

	c.table = tview.NewTable().SetBorders(false)
	c.table.SetContent(c.content)
	c.table.SetSelectable(true, false)
	c.table.SetFixed(1, 0)

	grid := tview.NewGrid().SetBorders(true)

	grid.AddItem(c.header, 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.table, 1, 0, 1, 1, 0, 0, true)

	return grid
}

// updateHeader shows the register name and its summary at the top, followed by the
// keyboard shortcuts sorted alphabetically and spread over a few columns.
func (c *Controller) updateHeader(reg ledger.Register, found bool) {
	c.header.Clear()

	if !found {
		c.header.SetCell(0, 0, tview.NewTableCell("[yellow]no register[white] - press <r> to create one"))
	} else {
		summary := ledger.Summarize(reg, c.store.DefaultTarget())
		c.header.SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", reg.Name)))
		c.header.SetCell(0, 1, tview.NewTableCell(
			fmt.Sprintf("%.1f%% (%d/%d)", summary.Percentage, summary.Present, summary.Total),
		).SetTextColor(standingColor(summary.Standing)))
	}

	shortcuts := []string{}
	for key, event := range c.events {
		shortcuts = append(shortcuts, fmt.Sprintf("[orange]<%c>[white] %s", key, event.Description))
	}

	sort.Strings(shortcuts)

	for i, text := range shortcuts {
		c.header.SetCell(1+i/shortcutColumns, i%shortcutColumns, tview.NewTableCell(text).SetExpansion(1))
	}
}

// refresh reloads the active register into the table, keeping the selection in range.
func (c *Controller) refresh() {
	reg, found := c.store.Register(c.store.ActiveRegister())

	c.content.update(reg, found)
	c.updateHeader(reg, found)

	row, _ := c.table.GetSelection()
	if last := c.content.GetRowCount() - 1; row > last {
		row = last
	}

	if row < 1 {
		row = 1
	}

	c.table.Select(row, 0)

	log.Debug().
		Int("register", c.store.ActiveRegister()).
		Bool("found", found).
		Int("row", row).
		Msg("refreshed register page")
}

func (c *Controller) showRegister() {
	c.refresh()

	c.app.SetInputCapture(c.handleKeys)
	c.pages.SwitchToPage(pageRegister)
	c.app.SetFocus(c.table)
}

// stepRegister activates the register offset positions away from the active one, wrapping
// around at either end.
func (c *Controller) stepRegister(offset int) {
	ids := c.store.RegisterIDs()
	if len(ids) == 0 {
		return
	}

	pos := sort.SearchInts(ids, c.store.ActiveRegister())
	if pos == len(ids) || ids[pos] != c.store.ActiveRegister() {
		// the active register is gone; start from the first one
		pos = 0
		offset = 0
	}

	next := ((pos+offset)%len(ids) + len(ids)) % len(ids)
	c.store.SetActiveRegister(ids[next])

	c.table.Select(1, 0)
	c.refresh()
}
