package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeUserRegistered    = "USER_REGISTERED"
	TypeUserLoggedIn      = "USER_LOGGED_IN"
	TypeCourseCreated     = "COURSE_CREATED"
	TypeCourseDeleted     = "COURSE_DELETED"
	TypeEnrollmentCreated = "ENROLLMENT_CREATED"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	now := time.Now()
	data["occurred_at"] = now.Format(time.RFC3339)
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}

func UserRegistered(userId uuid.UUID, username, role string) Event {
	return newEvent(TypeUserRegistered, map[string]interface{}{
		"user_id":  userId.String(),
		"username": username,
		"role":     role,
	})
}

func UserLoggedIn(userId uuid.UUID, sessionId string) Event {
	return newEvent(TypeUserLoggedIn, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId,
	})
}

func CourseCreated(courseId, createdBy uuid.UUID, title string) Event {
	return newEvent(TypeCourseCreated, map[string]interface{}{
		"course_id":     courseId.String(),
		"created_by_id": createdBy.String(),
		"title":         title,
	})
}

func CourseDeleted(courseId, deletedBy uuid.UUID) Event {
	return newEvent(TypeCourseDeleted, map[string]interface{}{
		"course_id":     courseId.String(),
		"deleted_by_id": deletedBy.String(),
	})
}

func EnrollmentCreated(enrollmentId, userId, courseId uuid.UUID) Event {
	return newEvent(TypeEnrollmentCreated, map[string]interface{}{
		"enrollment_id": enrollmentId.String(),
		"user_id":       userId.String(),
		"course_id":     courseId.String(),
	})
}
