package models

import "time"

// Member is the stored state of one faction member.
type Member struct {
	ID                  int64      `db:"id"`
	Name                string     `db:"name"`
	LastActionTimestamp int64      `db:"last_action_timestamp"`
	LastActionStatus    string     `db:"last_action_status"`
	IsInOC              bool       `db:"is_in_oc"`
	NotInOCSince        *time.Time `db:"not_in_oc_since"` // nil while in an OC
	InfractionTally     int        `db:"infraction_tally"`
}

// AlertRecord is the cooldown cursor for 24h escalation alerts.
type AlertRecord struct {
	MemberID  int64     `db:"member_id"`
	LastAlert time.Time `db:"last_alert"`
}
