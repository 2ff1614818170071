// Package journal keeps the session's closed trade records and renders
// them as a console summary and an Excel export at shutdown.
package journal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quangtran88/crypto-decision-engine/pkg/types"
)

// Entry is one closed trade as recorded in the journal
type Entry struct {
	Symbol    string
	Kind      types.OpportunityKind
	Direction types.Direction
	Entry     float64
	Exit      float64
	Size      float64
	PnL       float64
	OpenedAt  time.Time
	ClosedAt  time.Time
}

// Journal accumulates closed trades for the session
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	started time.Time
}

// New creates an empty journal
func New() *Journal {
	return &Journal{started: time.Now()}
}

// Record adds a closed position to the journal
func (j *Journal) Record(position types.Position) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, Entry{
		Symbol:    position.Symbol,
		Kind:      position.Kind,
		Direction: position.Direction,
		Entry:     position.EntryPrice,
		Exit:      position.ExitPrice,
		Size:      position.PositionSize,
		PnL:       position.PnL,
		OpenedAt:  position.OpenedAt,
		ClosedAt:  position.ClosedAt,
	})
}

// Entries returns a copy of the recorded trades
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Summary aggregates the session's closed trades
type Summary struct {
	Trades   int
	Winning  int
	Losing   int
	TotalPnL float64
	Duration time.Duration
}

// Summarize computes the session summary
func (j *Journal) Summarize() Summary {
	j.mu.Lock()
	defer j.mu.Unlock()

	summary := Summary{
		Trades:   len(j.entries),
		Duration: time.Since(j.started),
	}
	for _, entry := range j.entries {
		summary.TotalPnL += entry.PnL
		if entry.PnL >= 0 {
			summary.Winning++
		} else {
			summary.Losing++
		}
	}
	return summary
}

// PrintSummary renders the session summary table to stdout
func (j *Journal) PrintSummary() {
	summary := j.Summarize()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SESSION SUMMARY")
	t.SetStyle(table.StyleRounded)

	winRate := 0.0
	if summary.Trades > 0 {
		winRate = float64(summary.Winning) / float64(summary.Trades) * 100
	}

	t.AppendRows([]table.Row{
		{"🔄 Total Trades", fmt.Sprintf("%d", summary.Trades)},
		{"✅ Winning", fmt.Sprintf("%d (%.1f%%)", summary.Winning, winRate)},
		{"❌ Losing", fmt.Sprintf("%d", summary.Losing)},
		{"💰 Total PnL", fmt.Sprintf("$%.2f", summary.TotalPnL)},
		{"⏰ Session", summary.Duration.Round(time.Second).String()},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 35, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
