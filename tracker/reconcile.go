package tracker

import (
	"time"

	"faction-oc-bot/models"
)

// Policy holds the escalation thresholds.
type Policy struct {
	// AlertThreshold is how long a member must be continuously out of OC before an alert.
	AlertThreshold time.Duration
	// AlertCooldown is the minimum spacing between alerts for one member.
	AlertCooldown time.Duration
}

// DefaultPolicy alerts after 24h out of OC, at most once per 24h.
var DefaultPolicy = Policy{AlertThreshold: 24 * time.Hour, AlertCooldown: 24 * time.Hour}

// Plan is the outcome of reconciling one fetch against stored state.
type Plan struct {
	// Bootstrap is set when the store was empty; nothing is published on that tick.
	Bootstrap bool
	// Members holds the new state of every fetched member, in fetch order.
	Members []models.Member
	Summary Summary
	Alerts  []AlertCandidate
}

// Summary is the data rendered into the status message.
type Summary struct {
	Total   int
	InOC    int
	NotInOC int
	Outside []OutsideMember
}

// OutsideMember is one line of the "Not in OC" list.
type OutsideMember struct {
	ID            int64
	Name          string
	NotInOCSince  *time.Time
	NotInOCFor    string
	LastActionAgo string
}

// AlertCandidate is a member due an escalation alert.
type AlertCandidate struct {
	MemberID int64
	Name     string
}

// Reconcile applies a fetched member list to the stored members. It performs no I/O:
// the caller persists Plan.Members, sends Plan.Alerts and publishes Plan.Summary.
//
// NotInOCSince is set to now on the first tick a member is seen out of OC, kept as is
// while they stay out, and cleared when they are back in. An empty prev is a first
// import: members out of OC start their clock at now and no summary or alerts are produced.
// Stored members missing from fetched are left out of the plan entirely.
func Reconcile(prev map[int64]models.Member, alerts map[int64]models.AlertRecord, fetched []models.FactionMember, now time.Time, policy Policy) Plan {
	plan := Plan{Bootstrap: len(prev) == 0}

	for _, f := range fetched {
		m := models.Member{
			ID:                  f.ID,
			Name:                f.Name,
			LastActionTimestamp: f.LastAction.Timestamp,
			LastActionStatus:    f.LastAction.Status,
			IsInOC:              f.IsInOC,
		}
		old, known := prev[f.ID]
		m.InfractionTally = old.InfractionTally

		if !f.IsInOC {
			if known && old.NotInOCSince != nil {
				since := *old.NotInOCSince
				m.NotInOCSince = &since
			} else {
				since := now
				m.NotInOCSince = &since
			}
		}
		plan.Members = append(plan.Members, m)
	}

	if plan.Bootstrap {
		return plan
	}

	plan.Summary.Total = len(plan.Members)
	for _, m := range plan.Members {
		if m.IsInOC {
			plan.Summary.InOC++
			continue
		}
		plan.Summary.NotInOC++
		plan.Summary.Outside = append(plan.Summary.Outside, OutsideMember{
			ID:            m.ID,
			Name:          m.Name,
			NotInOCSince:  m.NotInOCSince,
			NotInOCFor:    sinceTime(m.NotInOCSince, now),
			LastActionAgo: Since(m.LastActionTimestamp, now),
		})

		if dueForAlert(m, alerts, now, policy) {
			plan.Alerts = append(plan.Alerts, AlertCandidate{MemberID: m.ID, Name: m.Name})
		}
	}
	return plan
}

func dueForAlert(m models.Member, alerts map[int64]models.AlertRecord, now time.Time, policy Policy) bool {
	if m.NotInOCSince == nil || now.Sub(*m.NotInOCSince) < policy.AlertThreshold {
		return false
	}
	rec, ok := alerts[m.ID]
	if !ok || rec.LastAlert.IsZero() {
		return true
	}
	return now.Sub(rec.LastAlert) >= policy.AlertCooldown
}
