package salbp_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/meikuraledutech/salbp"
)

type AssignmentSuite struct {
	suite.Suite
	inst *salbp.Instance
	a    *salbp.Assignment
}

func (s *AssignmentSuite) SetupTest() {
	s.inst = salbp.ParseInstance(smallInstance)
	s.a = salbp.NewAssignment(s.inst)
}

func (s *AssignmentSuite) violation(err error) *salbp.Violation {
	var v *salbp.Violation
	s.Require().True(errors.As(err, &v), "expected a violation, got %v", err)
	return v
}

// Task 3 waits on 1; station A takes 1 and 3 (load 7), 2 no longer fits
// there but fits a fresh station B.
func (s *AssignmentSuite) TestWalkthrough() {
	require := require.New(s.T())
	a := s.a.AddStation()

	v := s.violation(s.a.AssignTask("3", a))
	require.Equal(salbp.RulePrecedence, v.Rule)
	require.Equal([]string{"1"}, v.Missing)

	require.NoError(s.a.AssignTask("1", a))
	require.NoError(s.a.AssignTask("3", a))
	load, err := s.a.Load(a)
	require.NoError(err)
	require.Equal(7, load)

	v = s.violation(s.a.AssignTask("2", a))
	require.Equal(salbp.RuleCapacity, v.Rule)
	require.Equal(12, v.Total())
	require.Equal(10, v.CycleTime)
	require.Equal("cannot add task 2: total (12) exceeds cycle time (10)", v.Error())

	b := s.a.AddStation()
	require.NoError(s.a.AssignTask("2", b))
	require.True(s.a.IsFullyAssigned())
	require.Equal([]salbp.Station{
		{ID: 1, Tasks: []string{"1", "3"}},
		{ID: 2, Tasks: []string{"2"}},
	}, s.a.Stations())
}

func (s *AssignmentSuite) TestPrecedenceBeatsCapacity() {
	inst := salbp.ParseInstance("<cycle time>\n1\n<task times>\n1 1\n2 5\n<precedence relations>\n1,2\n")
	a := salbp.NewAssignment(inst)
	id := a.AddStation()

	v := s.violation(a.AssignTask("2", id))
	s.Require().Equal(salbp.RulePrecedence, v.Rule)
}

func (s *AssignmentSuite) TestCapacityBoundaryIsInclusive() {
	inst := salbp.ParseInstance("<cycle time>\n9\n<task times>\n1 4\n2 5\n3 1\n")
	a := salbp.NewAssignment(inst)
	id := a.AddStation()

	s.Require().NoError(a.AssignTask("1", id))
	s.Require().NoError(a.AssignTask("2", id))
	load, _ := a.Load(id)
	s.Require().Equal(9, load)

	v := s.violation(a.AssignTask("3", id))
	s.Require().Equal(salbp.RuleCapacity, v.Rule)
	s.Require().Equal(9, v.Load)
	s.Require().Equal(1, v.Duration)
}

func (s *AssignmentSuite) TestAlreadyAssigned() {
	require := require.New(s.T())
	a := s.a.AddStation()
	b := s.a.AddStation()
	require.NoError(s.a.AssignTask("1", a))

	v := s.violation(s.a.AssignTask("1", b))
	require.Equal(salbp.RuleAssigned, v.Rule)
	require.Equal(a, v.AssignedTo)
	require.Equal([]salbp.Station{{ID: 1, Tasks: []string{"1"}}, {ID: 2, Tasks: []string{}}}, s.a.Stations())
}

func (s *AssignmentSuite) TestUnknownIDs() {
	require := require.New(s.T())
	id := s.a.AddStation()

	require.ErrorIs(s.a.AssignTask("42", id), salbp.ErrUnknownTask)
	require.ErrorIs(s.a.AssignTask("1", 99), salbp.ErrUnknownStation)
	require.ErrorIs(s.a.RemoveStation(99), salbp.ErrUnknownStation)
	require.ErrorIs(s.a.UnassignTask(99, "1"), salbp.ErrUnknownStation)
	require.ErrorIs(s.a.UnassignTask(id, "1"), salbp.ErrNotInStation)
	_, err := s.a.Load(99)
	require.ErrorIs(err, salbp.ErrUnknownStation)
}

func (s *AssignmentSuite) TestRemoveStation() {
	require := require.New(s.T())
	a := s.a.AddStation()
	b := s.a.AddStation()
	require.NoError(s.a.AssignTask("1", a))

	v := s.violation(s.a.RemoveStation(a))
	require.Equal(salbp.RuleStationNotEmpty, v.Rule)
	require.Equal(1, v.Remaining)
	require.Len(s.a.Stations(), 2)

	require.NoError(s.a.RemoveStation(b))
	require.Equal([]salbp.Station{{ID: 1, Tasks: []string{"1"}}}, s.a.Stations())

	require.NoError(s.a.UnassignTask(a, "1"))
	require.NoError(s.a.RemoveStation(a))
	require.Empty(s.a.Stations())
}

func (s *AssignmentSuite) TestStationIDs() {
	require := require.New(s.T())
	require.Equal(1, s.a.AddStation())
	require.Equal(2, s.a.AddStation())
	require.Equal(3, s.a.AddStation())

	require.NoError(s.a.RemoveStation(2))
	require.Equal(4, s.a.AddStation())

	require.NoError(s.a.RemoveStation(4))
	require.NoError(s.a.RemoveStation(3))
	require.Equal(2, s.a.AddStation())
}

// Removing a predecessor leaves its successor where it is.
func (s *AssignmentSuite) TestUnassignDoesNotRecheckSuccessors() {
	require := require.New(s.T())
	id := s.a.AddStation()
	require.NoError(s.a.AssignTask("1", id))
	require.NoError(s.a.AssignTask("3", id))

	require.NoError(s.a.UnassignTask(id, "1"))
	at, ok := s.a.StationOf("3")
	require.True(ok)
	require.Equal(id, at)
	require.Equal([]string{"3"}, s.a.Assigned())
	require.False(s.a.IsFullyAssigned())
}

func (s *AssignmentSuite) TestReset() {
	require := require.New(s.T())
	id := s.a.AddStation()
	require.NoError(s.a.AssignTask("1", id))

	s.a.Reset()
	require.Empty(s.a.Stations())
	require.Empty(s.a.Assigned())
	require.Equal(1, s.a.AddStation())
	require.NoError(s.a.AssignTask("1", 1))
}

func (s *AssignmentSuite) TestCheckersDoNotMutate() {
	require := require.New(s.T())
	id := s.a.AddStation()

	v, err := s.a.CanAssign("1", id)
	require.NoError(err)
	require.Nil(v)
	v, err = s.a.CanRemoveStation(id)
	require.NoError(err)
	require.Nil(v)

	require.Equal([]salbp.Station{{ID: 1, Tasks: []string{}}}, s.a.Stations())
	require.Empty(s.a.Assigned())
}

func (s *AssignmentSuite) TestDanglingPredecessorBlocksForever() {
	inst := salbp.ParseInstance("<task times>\n1 4\n<precedence relations>\n0,1\n")
	a := salbp.NewAssignment(inst)
	id := a.AddStation()

	v := s.violation(a.AssignTask("1", id))
	s.Require().Equal([]string{"0"}, v.Missing)
	s.Require().ErrorIs(a.AssignTask("0", id), salbp.ErrUnknownTask)
}

func (s *AssignmentSuite) TestIsFullyAssignedMatchesSetEquality() {
	require := require.New(s.T())
	id := s.a.AddStation()
	other := s.a.AddStation()

	steps := []func() error{
		func() error { return s.a.AssignTask("1", id) },
		func() error { return s.a.AssignTask("2", other) },
		func() error { return s.a.AssignTask("3", id) },
		func() error { return s.a.UnassignTask(other, "2") },
		func() error { return s.a.AssignTask("2", other) },
	}
	for _, step := range steps {
		require.NoError(step())
		want := len(s.a.Assigned()) == len(s.inst.Tasks)
		require.Equal(want, s.a.IsFullyAssigned())
	}
	require.True(s.a.IsFullyAssigned())
}

func TestAssignmentSuite(t *testing.T) {
	suite.Run(t, new(AssignmentSuite))
}

// Two tasks compete for the last unit of capacity; exactly one wins.
func TestAssignTaskConcurrent(t *testing.T) {
	inst := salbp.ParseInstance("<cycle time>\n5\n<task times>\n1 4\n2 1\n3 1\n")
	for range 50 {
		a := salbp.NewAssignment(inst)
		id := a.AddStation()
		require.NoError(t, a.AssignTask("1", id))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, task := range []string{"2", "3"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = a.AssignTask(task, id)
			}()
		}
		wg.Wait()

		load, err := a.Load(id)
		require.NoError(t, err)
		require.Equal(t, 5, load)
		require.True(t, (errs[0] == nil) != (errs[1] == nil), "exactly one assignment must succeed: %v", errs)
	}
}
