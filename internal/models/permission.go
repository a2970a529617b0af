package models

// PermissionType is an OS capability an application can request.
// The set is fixed; classification tables are total over it.
type PermissionType string

const (
	PermissionCamera        PermissionType = "camera"
	PermissionMicrophone    PermissionType = "microphone"
	PermissionLocation      PermissionType = "location"
	PermissionContacts      PermissionType = "contacts"
	PermissionPhotos        PermissionType = "photos"
	PermissionNotifications PermissionType = "notifications"
	PermissionCalendar      PermissionType = "calendar"
	PermissionReminders     PermissionType = "reminders"
	PermissionNetwork       PermissionType = "network"
	PermissionFiles         PermissionType = "files"
	PermissionSystemEvents  PermissionType = "systemEvents"
)

// AllPermissionTypes returns every known permission type in a stable order.
func AllPermissionTypes() []PermissionType {
	return []PermissionType{
		PermissionCamera,
		PermissionMicrophone,
		PermissionLocation,
		PermissionContacts,
		PermissionPhotos,
		PermissionNotifications,
		PermissionCalendar,
		PermissionReminders,
		PermissionNetwork,
		PermissionFiles,
		PermissionSystemEvents,
	}
}

// RiskLevel is derived from PermissionType via a static table.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Recommendation is the suggested handling for a permission request.
type Recommendation string

const (
	RecommendAllow   Recommendation = "allow"
	RecommendLimited Recommendation = "limited"
	RecommendDeny    Recommendation = "deny"
)

// Classification is the result of classifying a permission type.
type Classification struct {
	Type           PermissionType `json:"type"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
}

// Permission is a capability requested by a discovered application.
// Risk, recommendation and reasoning are computed once at construction
// from the type and never change afterwards.
type Permission struct {
	Type           PermissionType `json:"type"`
	Description    string         `json:"description"`
	IsRequired     bool           `json:"is_required"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
}
