package tracker

import (
	"testing"
	"time"

	"faction-oc-bot/models"
)

var now = time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

func fm(id int64, name string, inOC bool, lastAction int64) models.FactionMember {
	return models.FactionMember{
		ID: id, Name: name, IsInOC: inOC,
		LastAction: models.LastAction{Status: "Offline", Timestamp: lastAction},
	}
}

func ptr(t time.Time) *time.Time { return &t }

func byID(members []models.Member) map[int64]models.Member {
	out := make(map[int64]models.Member, len(members))
	for _, m := range members {
		out[m.ID] = m
	}
	return out
}

func TestReconcileBootstrap(t *testing.T) {
	plan := Reconcile(nil, nil, []models.FactionMember{
		fm(1, "alice", true, now.Unix()),
		fm(2, "bob", false, now.Unix()-600),
	}, now, DefaultPolicy)

	if !plan.Bootstrap {
		t.Fatal("Bootstrap = false on an empty store, want true")
	}
	if len(plan.Alerts) != 0 || plan.Summary.Total != 0 {
		t.Fatalf("bootstrap plan has alerts %v / summary %+v, want none", plan.Alerts, plan.Summary)
	}
	got := byID(plan.Members)
	if got[1].NotInOCSince != nil {
		t.Fatalf("in-OC member NotInOCSince = %v, want nil", got[1].NotInOCSince)
	}
	if got[2].NotInOCSince == nil || !got[2].NotInOCSince.Equal(now) {
		t.Fatalf("out-of-OC member NotInOCSince = %v, want %v", got[2].NotInOCSince, now)
	}
}

func TestReconcileTransitions(t *testing.T) {
	earlier := now.Add(-5 * time.Hour)
	prev := map[int64]models.Member{
		1: {ID: 1, Name: "in_to_out", IsInOC: true},
		2: {ID: 2, Name: "out_stays_out", NotInOCSince: ptr(earlier), InfractionTally: 3},
		3: {ID: 3, Name: "out_to_in", NotInOCSince: ptr(earlier)},
		4: {ID: 4, Name: "departed", NotInOCSince: ptr(earlier)},
	}
	fetched := []models.FactionMember{
		fm(1, "in_to_out", false, 0),
		fm(2, "out_stays_out_renamed", false, now.Unix()-90),
		fm(3, "out_to_in", true, now.Unix()),
		fm(5, "newcomer_out", false, 0),
	}
	plan := Reconcile(prev, nil, fetched, now, DefaultPolicy)
	if plan.Bootstrap {
		t.Fatal("Bootstrap = true with stored members")
	}
	got := byID(plan.Members)

	if s := got[1].NotInOCSince; s == nil || !s.Equal(now) {
		t.Errorf("in->out NotInOCSince = %v, want %v", s, now)
	}
	if s := got[2].NotInOCSince; s == nil || !s.Equal(earlier) {
		t.Errorf("out->out NotInOCSince = %v, want preserved %v", s, earlier)
	}
	if got[2].Name != "out_stays_out_renamed" || got[2].LastActionTimestamp != now.Unix()-90 {
		t.Errorf("out->out row not refreshed: %+v", got[2])
	}
	if got[2].InfractionTally != 3 {
		t.Errorf("InfractionTally = %d, want 3", got[2].InfractionTally)
	}
	if got[3].NotInOCSince != nil {
		t.Errorf("out->in NotInOCSince = %v, want nil", got[3].NotInOCSince)
	}
	if s := got[5].NotInOCSince; s == nil || !s.Equal(now) {
		t.Errorf("newcomer NotInOCSince = %v, want %v", s, now)
	}
	if _, ok := got[4]; ok {
		t.Errorf("departed member present in plan")
	}

	if plan.Summary.Total != 4 || plan.Summary.InOC != 1 || plan.Summary.NotInOC != 3 {
		t.Errorf("Summary counts = %d/%d/%d, want 4/1/3", plan.Summary.Total, plan.Summary.InOC, plan.Summary.NotInOC)
	}
	outside := map[int64]OutsideMember{}
	for _, o := range plan.Summary.Outside {
		outside[o.ID] = o
	}
	if o := outside[2]; o.NotInOCFor != "5h 0m" || o.LastActionAgo != "1m" {
		t.Errorf("outside[2] = %+v, want 5h 0m / 1m", o)
	}
	if o := outside[1]; o.NotInOCFor != "0m" || o.LastActionAgo != "0m" {
		t.Errorf("outside[1] = %+v, want 0m / 0m", o)
	}
}

func TestReconcileRepeatedOutsideTicksKeepClock(t *testing.T) {
	prev := map[int64]models.Member{1: {ID: 1, IsInOC: true}}
	first := now
	for tick := 0; tick < 5; tick++ {
		tickNow := first.Add(time.Duration(tick) * time.Minute)
		plan := Reconcile(prev, nil, []models.FactionMember{fm(1, "a", false, 0)}, tickNow, DefaultPolicy)
		prev = byID(plan.Members)
		if s := prev[1].NotInOCSince; s == nil || !s.Equal(first) {
			t.Fatalf("tick %d: NotInOCSince = %v, want %v", tick, s, first)
		}
	}
}

func TestReconcileAlertCooldown(t *testing.T) {
	since := now.Add(-30 * time.Hour)
	prev := map[int64]models.Member{1: {ID: 1, NotInOCSince: ptr(since)}}
	fetched := []models.FactionMember{fm(1, "alice", false, 0)}
	lastAlert := now.Add(-10 * time.Hour)
	alerts := map[int64]models.AlertRecord{1: {MemberID: 1, LastAlert: lastAlert}}

	tests := []struct {
		name   string
		at     time.Time
		alerts map[int64]models.AlertRecord
		want   int
	}{
		{"no_record", now, nil, 1},
		{"within_cooldown", now, alerts, 0},
		{"just_before_cooldown", lastAlert.Add(24*time.Hour - time.Second), alerts, 0},
		{"at_cooldown", lastAlert.Add(24 * time.Hour), alerts, 1},
		{"after_cooldown", lastAlert.Add(48 * time.Hour), alerts, 1},
		{"zero_record", now, map[int64]models.AlertRecord{1: {MemberID: 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Reconcile(prev, tt.alerts, fetched, tt.at, DefaultPolicy)
			if len(plan.Alerts) != tt.want {
				t.Fatalf("len(Alerts) = %d, want %d", len(plan.Alerts), tt.want)
			}
		})
	}
}

func TestReconcileAlertThreshold(t *testing.T) {
	fetched := []models.FactionMember{fm(1, "alice", false, 0)}
	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"under_24h", now.Add(-24*time.Hour + time.Second), 0},
		{"exactly_24h", now.Add(-24 * time.Hour), 1},
		{"over_24h", now.Add(-25 * time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := map[int64]models.Member{1: {ID: 1, NotInOCSince: ptr(tt.since)}}
			plan := Reconcile(prev, nil, fetched, now, DefaultPolicy)
			if len(plan.Alerts) != tt.want {
				t.Fatalf("len(Alerts) = %d, want %d", len(plan.Alerts), tt.want)
			}
		})
	}

	inOC := map[int64]models.Member{1: {ID: 1, NotInOCSince: ptr(now.Add(-48 * time.Hour))}}
	plan := Reconcile(inOC, nil, []models.FactionMember{fm(1, "alice", true, 0)}, now, DefaultPolicy)
	if len(plan.Alerts) != 0 {
		t.Fatalf("member back in OC got %d alerts, want 0", len(plan.Alerts))
	}
}
