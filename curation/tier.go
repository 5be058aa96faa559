package curation

// Tier thresholds. Gold is strictly above GoldThreshold; silver is the half-open
// interval [SilverThreshold, GoldThreshold). A score of exactly 60 is neither.
const (
	GoldThreshold   = 60.0
	SilverThreshold = 56.0
)

// Tier is the quality bucket of a scored row. At most one flag is set.
type Tier struct {
	Gold   bool
	Silver bool
}

// Classify maps a score to its tier.
func Classify(score float64) Tier {
	return Tier{
		Gold:   score > GoldThreshold,
		Silver: score >= SilverThreshold && score < GoldThreshold,
	}
}

// Curated reports whether the row belongs in curated output.
func (t Tier) Curated() bool {
	return t.Gold || t.Silver
}

// Flag labels written to the RAG_GOLD and RAG_SILVER columns.
const (
	LabelYes = "SIM"
	LabelNo  = "NÃO"
)

// Labels returns the gold and silver column values for the tier.
func (t Tier) Labels() (gold, silver string) {
	return label(t.Gold), label(t.Silver)
}

func label(b bool) string {
	if b {
		return LabelYes
	}
	return LabelNo
}
