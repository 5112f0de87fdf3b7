package artifact

import "suimu/internal/music"

// WorkItem is a record that still needs a download, a conversion, or both.
type WorkItem struct {
	Record music.Record
	State  State
}

// Plan is the partition of a record set produced before a build.
type Plan struct {
	Work       []WorkItem
	Built      int
	Restricted int
}

// Total returns the number of records the plan covers.
func (p Plan) Total() int {
	return len(p.Work) + p.Built + p.Restricted
}

// Records returns the records in the work set, in input order.
func (p Plan) Records() []music.Record {
	out := make([]music.Record, 0, len(p.Work))
	for _, item := range p.Work {
		out = append(out, item.Record)
	}
	return out
}

// Plan resolves every record and keeps eligible, unbuilt ones in input order.
func (r Resolver) Plan(records []music.Record) (Plan, error) {
	var plan Plan
	for _, rec := range records {
		if !r.Eligible(rec) {
			plan.Restricted++
			continue
		}
		state, err := r.Resolve(rec)
		if err != nil {
			return Plan{}, err
		}
		if state == AlreadyBuilt {
			plan.Built++
			continue
		}
		plan.Work = append(plan.Work, WorkItem{Record: rec, State: state})
	}
	return plan, nil
}
