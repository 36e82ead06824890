package models

// FactionMembersResponse is the body of GET /v2/faction/members.
type FactionMembersResponse struct {
	Members []FactionMember `json:"members"`
}

// FactionMember is one member snapshot as reported by the Torn API.
type FactionMember struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Position          string       `json:"position"`
	Level             int          `json:"level"`
	DaysInFaction     int          `json:"days_in_faction"`
	IsRevivable       bool         `json:"is_revivable"`
	IsOnWall          bool         `json:"is_on_wall"`
	IsInOC            bool         `json:"is_in_oc"`
	HasEarlyDischarge bool         `json:"has_early_discharge"`
	LastAction        LastAction   `json:"last_action"`
	Status            MemberStatus `json:"status"`
	ReviveSetting     string       `json:"revive_setting"`
}

// LastAction describes when the member last did something in game.
type LastAction struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Relative  string `json:"relative"`
}

// MemberStatus is the member's current in-game state.
type MemberStatus struct {
	Description string `json:"description"`
	Details     string `json:"details"`
	State       string `json:"state"`
	Until       int64  `json:"until"`
}
