package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivities(t *testing.T) {
	rows := rowsFrom(
		[]string{"Daily Report", "15/03/2024"},
		[]string{"DAILY WORK PRODUCTION"},
		[]string{"Excavate cut 3 to RL 12.5"},
		[]string{"Haul material\nPlace fill in dam wall"},
		[]string{"COMMUNICATIONS", "toolbox talk"},
		[]string{"DAILY WORK PHOTOS"},
		[]string{"should never appear"},
	)

	assert.Equal(t, []string{
		"Excavate cut 3 to RL 12.5",
		"Haul material",
		"Place fill in dam wall",
	}, Activities(rows))
}

func TestActivitiesWithoutSection(t *testing.T) {
	rows := rowsFrom([]string{"PERSONNEL"}, []string{"J Smith"})
	assert.Empty(t, Activities(rows))
}

func TestActivityCellsAttributesPerCell(t *testing.T) {
	rows := rowsFrom(
		[]string{"DAILY WORK PRODUCTION"},
		[]string{"Excavate cut 3", "Haul to dump 2"},
		[]string{"DAILY WORK PHOTOS"},
	)

	assert.Equal(t, []string{"Excavate cut 3", "Haul to dump 2"}, ActivityCells(rows))
}

func TestSplitMultiline(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, SplitMultiline("one\r\ntwo\n"))
	assert.Equal(t, []string{"plain"}, SplitMultiline("  plain  "))
	assert.Empty(t, SplitMultiline("  \n  "))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "excavate cut 3", NormalizeText("  Excavate   CUT 3 "))
	assert.Equal(t, "", NormalizeText(""))
}
