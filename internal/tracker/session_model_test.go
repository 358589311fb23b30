package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/workout"
)

func TestSessionModel_StartsIdleAndEmpty(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	assert.Equal(t, SessionStateIdle, m.GetState())
	assert.Empty(t, m.GetWorkouts())
	_, ok := m.GetPending()
	assert.False(t, ok)
}

func TestSessionModel_NilLoggerPanics(t *testing.T) {
	assert.PanicsWithValue(t, "SessionModel: logger cannot be nil", func() {
		NewSessionModel(nil, nil)
	})
}

func TestSessionModel_StateNotifiesOnlyOnChange(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	var seen []SessionState
	unregister := m.ListenToState(func(s SessionState) { seen = append(seen, s) })
	defer unregister()

	m.SetState(SessionStateMapReady)
	m.SetState(SessionStateMapReady)
	m.SetState(SessionStateFormOpen)

	assert.Equal(t, []SessionState{SessionStateMapReady, SessionStateFormOpen}, seen)
}

func TestSessionModel_PendingMostRecentWins(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	m.SetPending(workout.Coordinates{Lat: 1, Lng: 2})
	m.SetPending(workout.Coordinates{Lat: 3, Lng: 4})

	pending, ok := m.GetPending()
	require.True(t, ok)
	assert.Equal(t, workout.Coordinates{Lat: 3, Lng: 4}, pending)

	m.ClearPending()
	_, ok = m.GetPending()
	assert.False(t, ok)
}

func TestSessionModel_AddWorkout(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	var added []string
	m.ListenToWorkoutAdded(func(w workout.Workout) { added = append(added, w.ID()) })

	m.AddWorkout(workout.NewRunning("a", testTime, 5, 25, testCoords, 170))
	m.AddWorkout(workout.NewCycling("b", testTime, 20, 60, testCoords, 100))

	assert.Equal(t, []string{"a", "b"}, added)
	assert.Equal(t, 2, m.WorkoutCount())
	found, ok := m.FindWorkout("b")
	require.True(t, ok)
	assert.Equal(t, workout.KindCycling, found.Kind())
}

func TestSessionModel_GeolocationResultIsReplayed(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	m.SetGeolocationResult(GeolocationResult{Position: testCoords})

	ch := make(chan GeolocationResult, 1)
	unregister := m.ListenToGeolocation(ch)
	defer unregister()

	select {
	case result := <-ch:
		assert.NoError(t, result.Err)
		assert.Equal(t, testCoords, result.Position)
	case <-time.After(time.Second):
		t.Fatal("geolocation result not replayed")
	}
}

func TestSessionModel_CloseApplication(t *testing.T) {
	m := NewSessionModel(newTestLogger(), nil)
	defer m.Shutdown()

	ch := make(chan struct{}, 1)
	m.ListenToCloseApplication(ch)
	m.RequestCloseApplication()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("close request not delivered")
	}
}

func TestSessionModel_LogTail(t *testing.T) {
	logChan := make(chan string, 10)
	m := NewSessionModel(newTestLogger(), logChan)
	defer m.Shutdown()

	for i := 0; i < 5; i++ {
		logChan <- fmt.Sprintf("line %d\n", i)
	}

	require.Eventually(t, func() bool {
		return len(m.GetLogTail(10)) == 5
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"line 3\n", "line 4\n"}, m.GetLogTail(2))
	assert.Empty(t, m.GetLogTail(0))
}

func TestSessionModel_LogTailIsBounded(t *testing.T) {
	logChan := make(chan string, maxLogLines+10)
	m := NewSessionModel(newTestLogger(), logChan)
	defer m.Shutdown()

	for i := 0; i < maxLogLines+10; i++ {
		logChan <- fmt.Sprintf("line %d\n", i)
	}

	require.Eventually(t, func() bool {
		tail := m.GetLogTail(1)
		return len(tail) == 1 && tail[0] == fmt.Sprintf("line %d\n", maxLogLines+9)
	}, time.Second, 10*time.Millisecond)

	tail := m.GetLogTail(maxLogLines + 10)
	assert.Len(t, tail, maxLogLines)
	assert.Equal(t, "line 10\n", tail[0])
}
