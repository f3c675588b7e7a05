package domain

// WordBanks holds the three buckets recovery phrases are sampled from.
// The lists are configuration; the real invariant is the unordered-pair
// uniqueness enforced on RecoveryToken.
type WordBanks struct {
	PositiveAdjectives []string
	FootballAdjectives []string
	FootballNouns      []string
}

// DefaultWordBanks is the stock phrase vocabulary.
func DefaultWordBanks() WordBanks {
	return WordBanks{
		PositiveAdjectives: []string{
			"relentless", "fearless", "clutch", "electric", "gritty",
			"savvy", "steady", "swift", "bold", "crafty",
			"dialed", "dominant", "fierce", "hungry", "iron",
			"loyal", "mighty", "prime", "sharp", "unstoppable",
		},
		FootballAdjectives: []string{
			"red-zone", "two-minute", "no-huddle", "play-action", "blitzing",
			"goal-line", "fourth-down", "pocket", "shotgun", "sideline",
			"snap-count", "hail-mary", "hurry-up", "off-tackle", "pistol",
			"screen-pass", "trick-play", "veer", "wildcat", "zone-read",
		},
		FootballNouns: []string{
			"anchor", "audible", "blitz", "cannon", "cleat",
			"endzone", "fumble", "gridiron", "helmet", "juke",
			"lateral", "linebacker", "pigskin", "pylon", "quarterback",
			"scramble", "snap", "spiral", "sweep", "touchdown",
		},
	}
}
