package twentyone

// BustLimit is the highest hand total that does not bust.
const BustLimit = 21

// InitialCards is how many cards each participant receives when a round starts.
const InitialCards = 2

const (
	DefaultHitThreshold  = 17
	DefaultRichThreshold = 10
	BrokeThreshold       = 0
)

// Rules captures the configurable table settings for a game.
type Rules struct {
	HitThreshold  int `json:"hit_threshold"`  // dealer draws while below this total
	RichThreshold int `json:"rich_threshold"` // bankroll ceiling at which a player counts as rich
}

func DefaultRules() Rules {
	return Rules{
		HitThreshold:  DefaultHitThreshold,
		RichThreshold: DefaultRichThreshold,
	}
}

func (r Rules) normalized() Rules {
	if r.HitThreshold <= 0 {
		r.HitThreshold = DefaultHitThreshold
	}
	if r.RichThreshold <= 0 {
		r.RichThreshold = DefaultRichThreshold
	}
	return r
}
