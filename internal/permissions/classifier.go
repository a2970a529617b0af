// Package permissions classifies OS capability requests into static
// risk levels and handling recommendations. Classification is a pure
// lookup: the tables are fixed and total over the permission enum.
package permissions

import (
	"errors"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// ErrUnknownPermission is returned when a string from an external caller
// does not name a known permission type.
var ErrUnknownPermission = errors.New("unknown permission type")

var riskTable = map[models.PermissionType]models.RiskLevel{
	models.PermissionCamera:        models.RiskHigh,
	models.PermissionMicrophone:    models.RiskHigh,
	models.PermissionContacts:      models.RiskHigh,
	models.PermissionPhotos:        models.RiskHigh,
	models.PermissionFiles:         models.RiskHigh,
	models.PermissionLocation:      models.RiskMedium,
	models.PermissionNotifications: models.RiskMedium,
	models.PermissionCalendar:      models.RiskMedium,
	models.PermissionReminders:     models.RiskMedium,
	models.PermissionNetwork:       models.RiskLow,
	models.PermissionSystemEvents:  models.RiskLow,
}

var recommendationTable = map[models.PermissionType]models.Recommendation{
	models.PermissionCamera:        models.RecommendDeny,
	models.PermissionMicrophone:    models.RecommendDeny,
	models.PermissionContacts:      models.RecommendLimited,
	models.PermissionPhotos:        models.RecommendLimited,
	models.PermissionLocation:      models.RecommendAllow,
	models.PermissionNotifications: models.RecommendAllow,
	models.PermissionCalendar:      models.RecommendAllow,
	models.PermissionReminders:     models.RecommendAllow,
	models.PermissionNetwork:       models.RecommendAllow,
	models.PermissionFiles:         models.RecommendAllow,
	models.PermissionSystemEvents:  models.RecommendAllow,
}

var reasoningTable = map[models.PermissionType]string{
	models.PermissionCamera:        "Camera access allows an app to record video at any time. Grant it only to apps whose core function is capturing video.",
	models.PermissionMicrophone:    "Microphone access allows an app to listen continuously. Deny unless the app is a communication or recording tool you trust.",
	models.PermissionLocation:      "Location reveals where you are and where you go. Prefer 'while using' over 'always' access.",
	models.PermissionContacts:      "Contacts expose personal data about other people, not just you. Limit to apps that genuinely need your address book.",
	models.PermissionPhotos:        "Photo libraries often contain sensitive images and embedded location data. Use limited, per-photo access where offered.",
	models.PermissionNotifications: "Notifications are low risk but can be used for phishing-style prompts. Allow for apps you interact with regularly.",
	models.PermissionCalendar:      "Calendar entries reveal your schedule and meeting contacts. Allow for productivity apps you rely on.",
	models.PermissionReminders:     "Reminders carry personal task data but little else. Generally safe to allow.",
	models.PermissionNetwork:       "Most apps need network access to function. Watch for apps that should work offline but demand connectivity.",
	models.PermissionFiles:         "File access is broad; allow it for tools that operate on your documents, and audit the folders granted.",
	models.PermissionSystemEvents:  "System event access is typically used for automation and accessibility. Low risk for well-known utilities.",
}

// Classify returns the risk level, recommendation and reasoning for a
// permission type. Deterministic: same input, same output, every call.
func Classify(t models.PermissionType) (models.Classification, error) {
	risk, ok := riskTable[t]
	if !ok {
		return models.Classification{}, ErrUnknownPermission
	}

	return models.Classification{
		Type:           t,
		RiskLevel:      risk,
		Recommendation: recommendationTable[t],
		Reasoning:      reasoningTable[t],
	}, nil
}

// ClassifyString parses and classifies a permission name from an
// external caller (the installation monitor reports raw strings).
func ClassifyString(s string) (models.Classification, error) {
	return Classify(models.PermissionType(s))
}

// All returns the classification of every known permission type, in the
// stable enum order.
func All() []models.Classification {
	types := models.AllPermissionTypes()
	result := make([]models.Classification, 0, len(types))
	for _, t := range types {
		c, err := Classify(t)
		if err != nil {
			continue // unreachable: tables are total over the enum
		}
		result = append(result, c)
	}
	return result
}

// NewPermission builds an immutable Permission record for a capability
// discovered by the installation monitor. Risk, recommendation and
// reasoning are fixed at construction.
func NewPermission(t models.PermissionType, description string, required bool) (*models.Permission, error) {
	c, err := Classify(t)
	if err != nil {
		return nil, err
	}

	return &models.Permission{
		Type:           t,
		Description:    description,
		IsRequired:     required,
		RiskLevel:      c.RiskLevel,
		Recommendation: c.Recommendation,
		Reasoning:      c.Reasoning,
	}, nil
}
