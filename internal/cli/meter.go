package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	meterFloorDB = -60.0
	// Levels above these thresholds are drawn in the warn and hot colors.
	meterWarnDB = -18.0
	meterHotDB  = -6.0
)

var (
	meterGoodStyle  = lipgloss.NewStyle().Foreground(goodColor)
	meterWarnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	meterHotStyle   = lipgloss.NewStyle().Foreground(hotColor)
	meterEmptyStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// LevelBar draws a width-cell bar for a reading in [-60, 0] dB followed by
// the numeric value. Cells are colored by the dB value they represent.
func LevelBar(db float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(db) {
		db = meterFloorDB
	}
	db = math.Max(meterFloorDB, math.Min(0, db))

	filled := int(math.Round((db - meterFloorDB) / -meterFloorDB * float64(width)))

	var good, warn, hot int
	for i := range filled {
		cellDB := meterFloorDB + (float64(i)+1)/float64(width)*-meterFloorDB
		switch {
		case cellDB > meterHotDB:
			hot++
		case cellDB > meterWarnDB:
			warn++
		default:
			good++
		}
	}

	var sb strings.Builder
	sb.WriteString(meterGoodStyle.Render(strings.Repeat("█", good)))
	sb.WriteString(meterWarnStyle.Render(strings.Repeat("█", warn)))
	sb.WriteString(meterHotStyle.Render(strings.Repeat("█", hot)))
	sb.WriteString(meterEmptyStyle.Render(strings.Repeat("░", width-filled)))
	sb.WriteString(fmt.Sprintf(" %6.1f dB", db))
	return sb.String()
}
