package twentyone

import "sort"

// SortGames orders games for the home listing: games whose player can still
// bet come first, broke games last, each group most recently played first.
func SortGames(games []*Game) []*Game {
	inPlay := make([]*Game, 0, len(games))
	broke := make([]*Game, 0)
	for _, g := range games {
		if g.Player.IsBroke() {
			broke = append(broke, g)
		} else {
			inPlay = append(inPlay, g)
		}
	}
	byRecency := func(list []*Game) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].LastPlayed.After(list[j].LastPlayed)
		})
	}
	byRecency(inPlay)
	byRecency(broke)
	return append(inPlay, broke...)
}
