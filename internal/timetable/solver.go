package timetable

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Solver places lectures greedily, most-constrained first, then runs a
// local-search pass that relocates lectures when a cheaper feasible slot
// exists.
type Solver struct {
	// ImprovementPasses bounds the local search; 0 uses a default.
	ImprovementPasses int
}

var ErrInfeasible = errors.New("timetable infeasible")

type solveState struct {
	in *Instance
	// roomBusy[roomIdx][day][slot]
	roomBusy [][][]bool
	// lecturerBusy[lecturer][day][slot]
	lecturerBusy map[string][][]bool
	rooms        map[string]int
	placements   map[string]Placement
}

// Solve returns a feasible schedule minimizing forecast energy cost, or
// ErrInfeasible when a lecture cannot be placed anywhere.
func (s *Solver) Solve(in *Instance) (*Schedule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	st := newState(in)

	// Order lectures by placement options ascending, largest first on ties
	// so bulky lectures claim space early.
	order := make([]int, len(in.Lectures))
	for i := range order {
		order[i] = i
	}
	options := make([]int, len(in.Lectures))
	for i, l := range in.Lectures {
		options[i] = st.countOptions(l)
	}
	sort.SliceStable(order, func(a, b int) bool {
		if options[order[a]] != options[order[b]] {
			return options[order[a]] < options[order[b]]
		}
		return in.Lectures[order[a]].DurationSlots > in.Lectures[order[b]].DurationSlots
	})

	for _, idx := range order {
		l := in.Lectures[idx]
		best, _ := st.cheapestPlacement(l)
		if best != nil {
			st.place(l, *best)
			continue
		}
		// Earlier placements may have fragmented the grid; try to free a
		// window by relocating them before giving up.
		if !st.repair(l) {
			return nil, fmt.Errorf("%w: no feasible slot for lecture %s", ErrInfeasible, l.ID)
		}
	}

	passes := s.ImprovementPasses
	if passes <= 0 {
		passes = 3
	}
	for pass := 0; pass < passes; pass++ {
		improved := false
		for _, l := range in.Lectures {
			cur := st.placements[l.ID]
			curCost := st.placementCost(l, cur)
			st.unplace(l, cur)
			best, cost := st.cheapestPlacement(l)
			if best != nil && cost < curCost-1e-12 {
				st.place(l, *best)
				improved = true
			} else {
				st.place(l, cur)
			}
		}
		if !improved {
			break
		}
	}

	sched := &Schedule{}
	for _, l := range in.Lectures {
		p := st.placements[l.ID]
		sched.Placements = append(sched.Placements, p)
		sched.EnergyCost += st.placementCost(l, p)
	}
	sort.Slice(sched.Placements, func(i, j int) bool {
		a, b := sched.Placements[i], sched.Placements[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartSlot != b.StartSlot {
			return a.StartSlot < b.StartSlot
		}
		return a.LectureID < b.LectureID
	})
	return sched, nil
}

func newState(in *Instance) *solveState {
	st := &solveState{
		in:           in,
		lecturerBusy: map[string][][]bool{},
		rooms:        map[string]int{},
		placements:   map[string]Placement{},
	}
	st.roomBusy = make([][][]bool, len(in.Rooms))
	for i, r := range in.Rooms {
		st.rooms[r.ID] = i
		st.roomBusy[i] = boolGrid(in.Days, in.SlotsPerDay)
	}
	for _, l := range in.Lectures {
		if l.Lecturer != "" && st.lecturerBusy[l.Lecturer] == nil {
			st.lecturerBusy[l.Lecturer] = boolGrid(in.Days, in.SlotsPerDay)
		}
	}
	return st
}

func boolGrid(days, slots int) [][]bool {
	g := make([][]bool, days)
	for i := range g {
		g[i] = make([]bool, slots)
	}
	return g
}

func (st *solveState) feasible(l Lecture, roomIdx, day, start int) bool {
	room := st.in.Rooms[roomIdx]
	if room.Capacity < l.Students {
		return false
	}
	for s := start; s < start+l.DurationSlots; s++ {
		if st.roomBusy[roomIdx][day][s] {
			return false
		}
		if l.Lecturer != "" && st.lecturerBusy[l.Lecturer][day][s] {
			return false
		}
	}
	return true
}

type displacedLecture struct {
	lecture   Lecture
	placement Placement
}

// repair tries every candidate window for a stuck lecture, relocating the
// already-placed lectures that block it. Blockers are moved to their
// cheapest remaining slot; if any blocker has nowhere to go the whole
// attempt is rolled back. Returns true when the lecture was placed.
func (st *solveState) repair(l Lecture) bool {
	for roomIdx, room := range st.in.Rooms {
		if room.Capacity < l.Students {
			continue
		}
		for _, day := range l.allowedDays(st.in.Days) {
			for start := l.EarliestSlot; start <= l.latestStart(st.in.SlotsPerDay); start++ {
				displaced := st.blockers(l, roomIdx, day, start)
				if len(displaced) == 0 {
					continue
				}
				for _, d := range displaced {
					st.unplace(d.lecture, d.placement)
				}
				st.place(l, Placement{LectureID: l.ID, RoomID: room.ID, Day: day, StartSlot: start})

				moved := make([]displacedLecture, 0, len(displaced))
				ok := true
				for _, d := range displaced {
					alt, _ := st.cheapestPlacement(d.lecture)
					if alt == nil {
						ok = false
						break
					}
					st.place(d.lecture, *alt)
					moved = append(moved, displacedLecture{d.lecture, *alt})
				}
				if ok {
					return true
				}

				for _, m := range moved {
					st.unplace(m.lecture, m.placement)
				}
				st.unplace(l, st.placements[l.ID])
				for _, d := range displaced {
					st.place(d.lecture, d.placement)
				}
			}
		}
	}
	return false
}

// blockers lists the placed lectures that make the window infeasible:
// same-room overlaps plus same-lecturer overlaps in any room.
func (st *solveState) blockers(l Lecture, roomIdx, day, start int) []displacedLecture {
	var out []displacedLecture
	for _, other := range st.in.Lectures {
		p, ok := st.placements[other.ID]
		if !ok || p.Day != day {
			continue
		}
		sameRoom := st.rooms[p.RoomID] == roomIdx
		sameLecturer := l.Lecturer != "" && l.Lecturer == other.Lecturer
		if !sameRoom && !sameLecturer {
			continue
		}
		if p.StartSlot < start+l.DurationSlots && start < p.StartSlot+other.DurationSlots {
			out = append(out, displacedLecture{other, p})
		}
	}
	return out
}

func (st *solveState) countOptions(l Lecture) int {
	n := 0
	for roomIdx := range st.in.Rooms {
		for _, day := range l.allowedDays(st.in.Days) {
			for start := l.EarliestSlot; start <= l.latestStart(st.in.SlotsPerDay); start++ {
				if st.feasible(l, roomIdx, day, start) {
					n++
				}
			}
		}
	}
	return n
}

// cheapestPlacement scans the feasible placements and returns the one
// with the lowest forecast energy cost.
func (st *solveState) cheapestPlacement(l Lecture) (*Placement, float64) {
	var best *Placement
	bestCost := math.Inf(1)
	for roomIdx, room := range st.in.Rooms {
		for _, day := range l.allowedDays(st.in.Days) {
			for start := l.EarliestSlot; start <= l.latestStart(st.in.SlotsPerDay); start++ {
				if !st.feasible(l, roomIdx, day, start) {
					continue
				}
				cost := st.slotCost(room, l, day, start)
				if cost < bestCost {
					bestCost = cost
					best = &Placement{LectureID: l.ID, RoomID: room.ID, Day: day, StartSlot: start}
				}
			}
		}
	}
	return best, bestCost
}

func (st *solveState) slotCost(room Room, l Lecture, day, start int) float64 {
	slotHours := float64(st.in.SlotMinutes) / 60.0
	cost := 0.0
	for s := start; s < start+l.DurationSlots; s++ {
		cost += st.in.Price[day][s] * room.PowerKW * slotHours
	}
	return cost
}

func (st *solveState) placementCost(l Lecture, p Placement) float64 {
	roomIdx := st.rooms[p.RoomID]
	return st.slotCost(st.in.Rooms[roomIdx], l, p.Day, p.StartSlot)
}

func (st *solveState) place(l Lecture, p Placement) {
	roomIdx := st.rooms[p.RoomID]
	for s := p.StartSlot; s < p.StartSlot+l.DurationSlots; s++ {
		st.roomBusy[roomIdx][p.Day][s] = true
		if l.Lecturer != "" {
			st.lecturerBusy[l.Lecturer][p.Day][s] = true
		}
	}
	st.placements[l.ID] = p
}

func (st *solveState) unplace(l Lecture, p Placement) {
	roomIdx := st.rooms[p.RoomID]
	for s := p.StartSlot; s < p.StartSlot+l.DurationSlots; s++ {
		st.roomBusy[roomIdx][p.Day][s] = false
		if l.Lecturer != "" {
			st.lecturerBusy[l.Lecturer][p.Day][s] = false
		}
	}
	delete(st.placements, l.ID)
}
