package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/bite-terminal/internal/models"
	"github.com/ngmaloney/bite-terminal/internal/search"
)

// resultItem wraps a ScoreResult for use in a list
type resultItem struct {
	result models.ScoreResult
}

// FilterValue implements list.Item
func (r resultItem) FilterValue() string {
	return r.result.RawTime
}

// Title implements list.DefaultItem
func (r resultItem) Title() string {
	return resultTitle(r.result)
}

// Description implements list.DefaultItem
func (r resultItem) Description() string {
	return resultDescription(r.result)
}

func resultTitle(r models.ScoreResult) string {
	return fmt.Sprintf("%s | %3d%% | wind %s", r.Timestamp.Format("15:04"), r.Score, r.WindArrow)
}

func resultDescription(r models.ScoreResult) string {
	return fmt.Sprintf("%s %s | water %.1f°C", r.DayStatus.Icon(), r.DayStatus, r.WaterTemp)
}

// resultDelegate draws each hour as two lines coloured by its score band
type resultDelegate struct{}

func (d resultDelegate) Height() int                             { return 2 }
func (d resultDelegate) Spacing() int                            { return 1 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(resultItem)
	if !ok {
		return
	}

	title := bandStyle(r.result.Band()).Render(r.Title())
	desc := mutedStyle.Render(r.Description())
	block := title + "\n" + desc

	if index == m.Index() {
		fmt.Fprint(w, selectedStyle.Render(block))
		return
	}
	fmt.Fprint(w, unselectedStyle.Render(block))
}

// createResultList creates a list.Model from a search batch
func createResultList(batch *search.Batch, width, height int) list.Model {
	items := make([]list.Item, len(batch.Results))
	for i, r := range batch.Results {
		items[i] = resultItem{result: r}
	}

	l := list.New(items, resultDelegate{}, max(width, 20), max(height, 6))
	l.Title = fmt.Sprintf("🎣 %s • %s", batch.Location.Name, batch.Species)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return l
}
