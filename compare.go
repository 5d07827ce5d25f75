package salbp

// Outcome is the result of comparing a player's stations with the reference.
type Outcome string

const (
	OutcomeMatch    Outcome = "station-count-match"
	OutcomeMismatch Outcome = "station-count-mismatch"
)

// Verdict compares station counts only; SALBP-1 minimises the number of
// stations, so which task sits where does not matter.
type Verdict struct {
	Outcome           Outcome `json:"outcome"`
	PlayerStations    int     `json:"player_stations"`
	ReferenceStations int     `json:"reference_stations"`
}

// Compare produces the verdict for a player's stations against a reference.
func Compare(player, reference []Station) Verdict {
	v := Verdict{
		Outcome:           OutcomeMismatch,
		PlayerStations:    len(player),
		ReferenceStations: len(reference),
	}
	if v.PlayerStations == v.ReferenceStations {
		v.Outcome = OutcomeMatch
	}
	return v
}

// Matches reports whether the player reached the reference station count.
func (v Verdict) Matches() bool {
	return v.Outcome == OutcomeMatch
}
