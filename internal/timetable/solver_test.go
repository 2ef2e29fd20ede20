package timetable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicInstance() *Instance {
	return &Instance{
		Days:        1,
		SlotsPerDay: 4,
		SlotMinutes: 60,
		Rooms: []Room{
			{ID: "r1", Building: "lib", Capacity: 50, PowerKW: 10},
		},
		Lectures: []Lecture{
			{ID: "l1", Course: "algo", Lecturer: "ada", Students: 30, DurationSlots: 1},
		},
		Price: [][]float64{{0.4, 0.1, 0.3, 0.2}},
	}
}

func placementOf(t *testing.T, sched *Schedule, lectureID string) Placement {
	t.Helper()
	for _, p := range sched.Placements {
		if p.LectureID == lectureID {
			return p
		}
	}
	t.Fatalf("lecture %s not placed", lectureID)
	return Placement{}
}

func TestSolve_PicksCheapestSlot(t *testing.T) {
	s := &Solver{}
	sched, err := s.Solve(basicInstance())
	require.NoError(t, err)

	p := placementOf(t, sched, "l1")
	assert.Equal(t, 1, p.StartSlot)
	// 0.1 $/kWh * 10 kW * 1 h
	assert.InDelta(t, 1.0, sched.EnergyCost, 1e-9)
}

func TestSolve_MultiSlotLectureSpansCheapBlock(t *testing.T) {
	in := basicInstance()
	in.Lectures[0].DurationSlots = 2
	in.Price = [][]float64{{0.4, 0.1, 0.2, 0.5}}

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)

	p := placementOf(t, sched, "l1")
	assert.Equal(t, 1, p.StartSlot)
	assert.InDelta(t, 3.0, sched.EnergyCost, 1e-9)
}

func TestSolve_RoomCapacity(t *testing.T) {
	in := basicInstance()
	in.Rooms = append(in.Rooms, Room{ID: "r2", Building: "eng", Capacity: 200, PowerKW: 10})
	in.Lectures[0].Students = 100

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)
	assert.Equal(t, "r2", placementOf(t, sched, "l1").RoomID)
}

func TestSolve_NoRoomBigEnough(t *testing.T) {
	in := basicInstance()
	in.Lectures[0].Students = 100

	_, err := (&Solver{}).Solve(in)
	assert.True(t, errors.Is(err, ErrInfeasible))
}

func TestSolve_RoomDoubleBooking(t *testing.T) {
	in := basicInstance()
	in.Lectures = []Lecture{
		{ID: "a", Students: 10, DurationSlots: 2},
		{ID: "b", Students: 10, DurationSlots: 2},
	}

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)

	pa := placementOf(t, sched, "a")
	pb := placementOf(t, sched, "b")
	overlap := pa.StartSlot < pb.StartSlot+2 && pb.StartSlot < pa.StartSlot+2
	assert.False(t, overlap, "lectures %v and %v overlap in room", pa, pb)
}

func TestSolve_InfeasibleWhenRoomFull(t *testing.T) {
	// Three 2-slot lectures cannot fit in a single 4-slot room, however
	// the earlier placements are shuffled.
	in := basicInstance()
	in.Lectures = []Lecture{
		{ID: "a", Students: 10, DurationSlots: 2},
		{ID: "b", Students: 10, DurationSlots: 2},
		{ID: "c", Students: 10, DurationSlots: 2},
	}

	_, err := (&Solver{}).Solve(in)
	assert.True(t, errors.Is(err, ErrInfeasible))
}

func TestSolve_LecturerCannotBeInTwoRooms(t *testing.T) {
	in := basicInstance()
	in.Rooms = append(in.Rooms, Room{ID: "r2", Building: "eng", Capacity: 50, PowerKW: 10})
	in.Lectures = []Lecture{
		{ID: "a", Lecturer: "ada", Students: 10, DurationSlots: 1, Days: []int{0}, EarliestSlot: 1, LatestSlot: 1},
		{ID: "b", Lecturer: "ada", Students: 10, DurationSlots: 1},
	}

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)

	pa := placementOf(t, sched, "a")
	pb := placementOf(t, sched, "b")
	assert.NotEqual(t, pa.StartSlot, pb.StartSlot)
}

func TestSolve_RespectsDayAndSlotBounds(t *testing.T) {
	in := basicInstance()
	in.Days = 3
	in.Price = [][]float64{
		{0.1, 0.1, 0.1, 0.1},
		{0.9, 0.9, 0.9, 0.9},
		{0.05, 0.05, 0.05, 0.05},
	}
	in.Lectures[0].Days = []int{1}
	in.Lectures[0].EarliestSlot = 2

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)

	p := placementOf(t, sched, "l1")
	assert.Equal(t, 1, p.Day)
	assert.GreaterOrEqual(t, p.StartSlot, 2)
}

func TestSolve_PlacementsSortedChronologically(t *testing.T) {
	in := basicInstance()
	in.Lectures = []Lecture{
		{ID: "a", Students: 10, DurationSlots: 1},
		{ID: "b", Students: 10, DurationSlots: 1},
		{ID: "c", Students: 10, DurationSlots: 1},
	}

	sched, err := (&Solver{}).Solve(in)
	require.NoError(t, err)
	for i := 1; i < len(sched.Placements); i++ {
		prev, cur := sched.Placements[i-1], sched.Placements[i]
		ok := prev.Day < cur.Day || (prev.Day == cur.Day && prev.StartSlot <= cur.StartSlot)
		assert.True(t, ok)
	}
}

func TestInstanceValidate(t *testing.T) {
	in := basicInstance()
	in.Price = [][]float64{{0.1, 0.2}}
	assert.Error(t, in.Validate())

	in = basicInstance()
	in.Lectures[0].DurationSlots = 9
	assert.Error(t, in.Validate())

	in = basicInstance()
	in.Rooms = append(in.Rooms, in.Rooms[0])
	assert.Error(t, in.Validate())
}
