package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/rivo/tview"
)

const (
	titleRatio = 3
)

// standingColor maps a standing to the color its percentage is drawn in.
func standingColor(s ledger.Standing) tcell.Color {
	switch s {
	case ledger.Deficit:
		return tcell.ColorRed
	case ledger.Surplus:
		return tcell.ColorGreen
	default:
		return tcell.ColorYellow
	}
}

// advice tells the user how far the card is from its target.
func advice(card ledger.Card) string {
	if card.Standing() == ledger.Deficit {
		n := ledger.ClassesToAttend(card.Present, card.Total, card.TargetPercentage)
		if n < 0 {
			return "target unreachable"
		}

		return fmt.Sprintf("attend next %d", n)
	}

	switch n := ledger.ClassesCanSkip(card.Present, card.Total, card.TargetPercentage); {
	case n < 0:
		return "no target"
	case n == 0:
		return "on the edge"
	default:
		return fmt.Sprintf("can skip %d", n)
	}
}

// columns returns the headers shown for a card size; smaller sizes show fewer columns.
func columns(size ledger.CardSize) []string {
	switch size {
	case ledger.CardSizeMini:
		return []string{"title", "attendance"}
	case ledger.CardSizeSmall:
		return []string{"title", "present", "attendance"}
	default:
		return []string{"title", "present", "attendance", "target", "advice"}
	}
}

// CardContent implements tview.TableContent, which tview.Table uses to update data.
type CardContent struct {
	tview.TableContentReadOnly
	register ledger.Register
	found    bool
}

func (s *CardContent) update(reg ledger.Register, found bool) {
	s.register = reg
	s.found = found
}

func (s *CardContent) cardForRow(row int) (ledger.Card, bool) {
	// adjust for the header row
	if idx := row - 1; s.found && idx >= 0 && idx < len(s.register.Cards) {
		return s.register.Cards[idx], true
	}

	return ledger.Card{}, false
}

// GetCell returns the cell at the given position or nil if no cell.
func (s *CardContent) GetCell(row, col int) *tview.TableCell {
	headers := columns(s.register.CardSize)
	if col < 0 || col >= len(headers) {
		return nil
	}

	if row == 0 {
		expansion := 1
		if col == 0 {
			expansion = titleRatio
		}

		return tview.NewTableCell(headers[col]).SetExpansion(expansion).
			SetTextColor(tcell.ColorYellow).SetSelectable(false)
	}

	card, ok := s.cardForRow(row)
	if !ok {
		return nil
	}

	switch headers[col] {
	case "title":
		cell := tview.NewTableCell(card.Title).SetExpansion(titleRatio).SetReference(card.ID)
		if color := tcell.GetColor(card.TagColor); color != tcell.ColorDefault {
			cell.SetTextColor(color)
		}

		return cell
	case "present":
		return tview.NewTableCell(fmt.Sprintf("%d/%d", card.Present, card.Total)).SetExpansion(1)
	case "attendance":
		return tview.NewTableCell(fmt.Sprintf("%.1f%%", card.Percentage())).
			SetTextColor(standingColor(card.Standing())).SetExpansion(1)
	case "target":
		return tview.NewTableCell(fmt.Sprintf("%d%%", card.TargetPercentage)).SetExpansion(1)
	case "advice":
		return tview.NewTableCell(advice(card)).SetExpansion(1)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (s *CardContent) GetRowCount() int {
	if s.found {
		return len(s.register.Cards) + 1
	}

	return 1
}

// GetColumnCount returns the number of columns in the table.
func (s *CardContent) GetColumnCount() int {
	return len(columns(s.register.CardSize))
}
