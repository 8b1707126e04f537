package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelays(t *testing.T) {
	rows := rowsFrom(
		[]string{"DELAYS-OPPORTUNITY FOR IMPROVEMENT"},
		[]string{"Rain stopped haul 10:00-12:00\nPump down on pit 2"},
		[]string{"Waiting on survey set-out"},
		[]string{"HSEQ"},
		[]string{"never reached"},
	)

	assert.Equal(t, []DelayEntry{
		{Description: "Rain stopped haul 10:00-12:00"},
		{Description: "Pump down on pit 2"},
		{Description: "Waiting on survey set-out"},
	}, Delays(rows))
}

func TestDelaysMissingSection(t *testing.T) {
	assert.Empty(t, Delays(rowsFrom([]string{"PRODUCTION"}, []string{"dig"})))
}
