package domain

import "time"

// IncidentReport gathers everything the incident PDF shows.
type IncidentReport struct {
	ID            string             `json:"id"`
	SensorID      string             `json:"sensor_id,omitempty"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Stats         APStats            `json:"stats"`
	Registrations []SSIDRegistration `json:"registrations"`
	Verdicts      []RogueVerdict     `json:"verdicts"`
	Alerts        []Alert            `json:"alerts"`
}
