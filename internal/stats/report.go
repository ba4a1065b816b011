package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/reflex/internal/model"
	"github.com/verte-zerg/reflex/internal/store"
)

const (
	averageWindow = 3
	maxTableRows  = 10
)

// Report contains precomputed data for the farewell screen.
type Report struct {
	Summary model.Summary
	Rounds  []model.RoundRecord
	// Reactions are the reaction times in milliseconds, in round order.
	Reactions []float64
}

// BuildReport loads the rounds of player and summarizes them.
func BuildReport(ctx context.Context, st *store.Store, player string) (Report, error) {
	sum, err := st.Summary(ctx, player)
	if err != nil {
		return Report{}, err
	}
	rounds, err := st.ListRounds(ctx, player)
	if err != nil {
		return Report{}, err
	}
	reactions := make([]float64, len(rounds))
	for i, r := range rounds {
		reactions[i] = float64(r.ReactionMs)
	}
	return Report{Summary: sum, Rounds: rounds, Reactions: reactions}, nil
}

// Lines renders the report as plain text lines. Only the most recent
// rounds are listed in the table.
func Lines(r Report) []string {
	sum := r.Summary
	if sum.Rounds == 0 {
		return []string{"No rounds played."}
	}
	lines := []string{
		fmt.Sprintf("Rounds: %d  Wins: %d  Too slow: %d  Wrong color: %d", sum.Rounds, sum.Wins, sum.TooSlow, sum.WrongColor),
		fmt.Sprintf("Win rate: %.1f%%", WinRate(sum)*100),
	}
	if sum.HasReaction {
		lines = append(lines, fmt.Sprintf("Best reaction: %.3f s  Mean reaction: %.3f s", float64(sum.BestMs)/1000, sum.MeanMs/1000))
	}
	lines = append(lines, "")

	avg := MovingAverage(r.Reactions, averageWindow)
	start := max(0, len(r.Rounds)-maxTableRows)
	tbl := newTable(
		column{title: "Round", right: true},
		column{title: "Mode"},
		column{title: "Verdict"},
		column{title: "Reaction (ms)", right: true},
		column{title: fmt.Sprintf("Avg(%d)", averageWindow), right: true},
	)
	for i := start; i < len(r.Rounds); i++ {
		rec := r.Rounds[i]
		tbl.add(
			fmt.Sprintf("%d", i+1),
			string(rec.Mode),
			strings.ReplaceAll(rec.Verdict.String(), "_", " "),
			fmt.Sprintf("%d", rec.ReactionMs),
			fmt.Sprintf("%.0f", avg[i]),
		)
	}
	lines = append(lines, tbl.lines()...)
	if len(r.Reactions) > 1 {
		lines = append(lines, "", "Reactions: "+Sparkline(r.Reactions))
	}
	return lines
}
