package analysis

import "strings"

// MeetingType steers prompt framing only.
type MeetingType string

const (
	MeetingStandup        MeetingType = "standup"
	MeetingSprintPlanning MeetingType = "sprint-planning"
	MeetingClient         MeetingType = "client-meeting"
	MeetingAcademic       MeetingType = "academic"
	MeetingLeadership     MeetingType = "leadership"
	MeetingGeneral        MeetingType = "general"
)

// MeetingTypes lists every recognised tag, general last.
var MeetingTypes = []MeetingType{
	MeetingStandup,
	MeetingSprintPlanning,
	MeetingClient,
	MeetingAcademic,
	MeetingLeadership,
	MeetingGeneral,
}

// Known reports whether t is one of MeetingTypes.
func (t MeetingType) Known() bool {
	for _, k := range MeetingTypes {
		if t == k {
			return true
		}
	}
	return false
}

// ParseMeetingType normalises s; anything unrecognised maps to general.
func ParseMeetingType(s string) MeetingType {
	t := MeetingType(strings.ToLower(strings.TrimSpace(s)))
	if t.Known() {
		return t
	}
	return MeetingGeneral
}
