package model

import (
	"cmp"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type incumbentState struct {
	instance   Instance
	assignment Assignment
	slotLoad   []int   // Duty-slots held at each time slot
	occupancy  [][]int // occupancy[p][t]: duty-slots held by professional p at time t
	hours      []int
	covered    []bool
}

// Incumbent builds an assignment that satisfies every rule without solving the model. A maximum matching between
// duties and professionals seeds one duty per professional, then the remaining duties are handed out greedily by affinity
func Incumbent(instance Instance, variant Variant) (Assignment, error) {
	if err := instance.Check(); err != nil {
		return Assignment{}, err
	}

	state := &incumbentState{
		instance:   instance,
		assignment: NewAssignment(instance, variant),
		slotLoad:   make([]int, instance.T),
		occupancy:  zeros(instance.P, instance.T),
		hours:      make([]int, instance.P),
		covered:    make([]bool, instance.D),
	}

	pairs := make([][2]int, 0, instance.P*instance.D) // (professional, duty)
	for p := range instance.P {
		for d := range instance.D {
			if state.eligible(p, d) {
				pairs = append(pairs, [2]int{p, d})
			}
		}
	}
	byAffinity := func(a, b [2]int) int {
		if c := cmp.Compare(instance.Apd[b[0]][b[1]], instance.Apd[a[0]][a[1]]); c != 0 {
			return c
		}
		if c := cmp.Compare(a[1], b[1]); c != 0 {
			return c
		}
		return cmp.Compare(a[0], b[0])
	}

	//** Seed with a maximum matching
	matched, err := matchDuties(instance, pairs)
	if err != nil {
		return Assignment{}, err
	}
	slices.SortFunc(matched, byAffinity)
	for _, pair := range matched {
		state.place(pair[0], pair[1])
	}

	//** Complete greedily
	slices.SortFunc(pairs, byAffinity)
	for _, pair := range pairs {
		if !state.covered[pair[1]] {
			state.place(pair[0], pair[1])
		}
	}

	return state.assignment, nil
}

func matchDuties(instance Instance, pairs [][2]int) ([][2]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	edges := lo.SliceToMap(pairs, func(pair [2]int) ([2]int, bool) { return pair, true })
	neighbors := func(dutyAny any, professionalAny any) (bool, error) {
		return edges[[2]int{professionalAny.(int), dutyAny.(int)}], nil
	}

	// Transform duties and professionals to slices of any
	duties := lo.Times(instance.D, func(d int) any { return d })
	professionals := lo.Times(instance.P, func(p int) any { return p })

	graph, err := bipartitegraph.NewBipartiteGraph(duties, professionals, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()
	matched := make([][2]int, 0, len(matching))
	for _, edge := range matching {
		duty, professional := edge.Node1, edge.Node2-len(duties)
		matched = append(matched, [2]int{professional, duty})
	}
	return matched, nil
}

// eligible reports whether professional p could hold duty d in an otherwise empty schedule and doing so pays off
func (state *incumbentState) eligible(p, d int) bool {
	instance := state.instance
	if instance.Apd[p][d] <= -CoverageWeight || instance.Hd[d] > instance.H || instance.Hd[d] > instance.T {
		return false
	}
	available := lo.CountBy(instance.Rpt[p], func(limit int) bool { return limit > 0 })
	return available >= instance.Hd[d]
}

// place assigns duty d to professional p if the slots, the repetition cap and the hour cap allow it
func (state *incumbentState) place(p, d int) bool {
	instance := state.instance
	if state.covered[d] || state.hours[p]+instance.Hd[d] > instance.H {
		return false
	}

	slots := lo.Filter(lo.Range(instance.T), func(t int, _ int) bool {
		return state.slotLoad[t] < instance.S && state.occupancy[p][t] < instance.Rpt[p][t]
	})
	if len(slots) < instance.Hd[d] {
		return false
	}
	slices.SortStableFunc(slots, func(a, b int) int { return cmp.Compare(state.slotLoad[a], state.slotLoad[b]) })
	slots = slots[:instance.Hd[d]]

	state.covered[d] = true
	state.hours[p] += instance.Hd[d]
	state.assignment.X[p][d] = 1
	for _, t := range slots {
		state.slotLoad[t]++
		state.occupancy[p][t]++
		if state.assignment.Y != nil {
			state.assignment.Y[p][d][t] = 1
		} else {
			state.assignment.AggregatedY[d][t] = 1
		}
	}
	return true
}
