package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterview_State(t *testing.T) {
	tutor := "T"
	at := int64(1740819600000)
	meeting := "m1"

	type testcase struct {
		name      string
		interview Interview
		want      InterviewState
	}

	tests := [...]testcase{
		{
			name:      "fresh record",
			interview: Interview{StudentID: "S"},
			want:      StateUnassigned,
		},
		{
			name:      "tutor and time",
			interview: Interview{StudentID: "S", TutorID: &tutor, ScheduledAt: &at},
			want:      StateAssigned,
		},
		{
			name:      "with meeting resource",
			interview: Interview{StudentID: "S", TutorID: &tutor, ScheduledAt: &at, MeetingID: &meeting},
			want:      StateConfirmed,
		},
		{
			name:      "completed wins",
			interview: Interview{StudentID: "S", TutorID: &tutor, ScheduledAt: &at, MeetingID: &meeting, Completed: true},
			want:      StateCompleted,
		},
		{
			name:      "completed without assignment",
			interview: Interview{StudentID: "S", Completed: true},
			want:      StateCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.interview.State())
		})
	}
}

func TestInterview_CurrentAssignment(t *testing.T) {
	tutor := "T"
	at := int64(100)

	i := Interview{StudentID: "S", TutorID: &tutor, ScheduledAt: &at}
	a := i.CurrentAssignment()

	require.Equal(t, &tutor, a.TutorID)
	require.Equal(t, &at, a.ScheduledAt)
	require.Nil(t, a.MeetingID)
}
