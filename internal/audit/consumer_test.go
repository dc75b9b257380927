package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/onego-ai/onego/internal/nats"
)

func TestAuditEventDeserialization(t *testing.T) {
	ownerID := uuid.New()
	courseID := uuid.New()

	event := inats.AuditEvent{
		ID:           uuid.New(),
		OwnerUserID:  ownerID,
		EventType:    EventCourseCreated,
		Severity:     SeverityInfo,
		ResourceType: "course",
		ResourceID:   courseID.String(),
		Details:      "Created course: Customer Service Retail",
		Timestamp:    time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded inats.AuditEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, ownerID, decoded.OwnerUserID)
	assert.Equal(t, EventCourseCreated, decoded.EventType)
	assert.Equal(t, courseID.String(), decoded.ResourceID)
}

func TestEventToLog_ValidResourceID(t *testing.T) {
	courseID := uuid.New()
	event := inats.AuditEvent{
		ID:           uuid.New(),
		OwnerUserID:  uuid.New(),
		EventType:    EventCourseCreated,
		Severity:     SeverityInfo,
		ResourceType: "course",
		ResourceID:   courseID.String(),
		Details:      "Created course: Negotiation",
		Timestamp:    time.Now().UTC(),
	}

	log := eventToLog(event)

	assert.Equal(t, event.ID, log.ID)
	assert.Equal(t, event.OwnerUserID, log.OwnerUserID)
	assert.Equal(t, EventCourseCreated, log.EventType)
	assert.Equal(t, "course", log.ResourceType)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, courseID, *log.ResourceID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "Created course: Negotiation", details["message"])
}

func TestEventToLog_InvalidResourceID(t *testing.T) {
	event := inats.AuditEvent{
		OwnerUserID:  uuid.New(),
		EventType:    EventWebsiteExtracted,
		ResourceType: "website",
		ResourceID:   "https://example.com",
		Timestamp:    time.Now().UTC(),
	}

	log := eventToLog(event)
	assert.Nil(t, log.ResourceID)
}

func TestEventToLog_Defaults(t *testing.T) {
	log := eventToLog(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: EventCreditsRejected})

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, SeverityInfo, log.Severity)
	assert.False(t, log.CreatedAt.IsZero())
	assert.Nil(t, log.ResourceID)
}
