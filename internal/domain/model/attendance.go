package model

import "time"

// Participant is one roster member as exchanged with the attendance terminal.
// The lecturer is always listed before students.
type Participant struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	UniqueID string `json:"uniqueId"`
	Present  bool   `json:"present"`
}

// Roster holds the normalized participants of one course.
type Roster struct {
	Lecturer *Participant
	Students []Participant
}

// Participants returns the flat lecturer-first participant list.
func (r Roster) Participants() []Participant {
	out := make([]Participant, 0, len(r.Students)+1)
	if r.Lecturer != nil {
		out = append(out, *r.Lecturer)
	}
	out = append(out, r.Students...)
	return out
}

// StudentAttendance is one attendance mark inside a session document.
type StudentAttendance struct {
	StudentID      string    `json:"student_id"`
	AttendanceTime time.Time `json:"attendance_time"`
	Attended       bool      `json:"attended"`
}

// AttendanceSession is the session document posted to the central collector.
type AttendanceSession struct {
	SessionID      int64               `json:"session_id"`
	CourseCode     string              `json:"course_code"`
	LecturerID     string              `json:"lecturer_id"`
	SessionDate    time.Time           `json:"session_date"`
	AttendanceData []StudentAttendance `json:"attendance_data"`
}
