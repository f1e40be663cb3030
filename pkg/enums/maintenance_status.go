package enums

import "fmt"

// MaintenanceStatus tracks the repair ticket workflow.
type MaintenanceStatus string

const (
	MaintenanceStatusPending      MaintenanceStatus = "pending"
	MaintenanceStatusPartsOrdered MaintenanceStatus = "parts_ordered"
	MaintenanceStatusInProgress   MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted    MaintenanceStatus = "completed"
	MaintenanceStatusCancelled    MaintenanceStatus = "cancelled"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusPending,
	MaintenanceStatusPartsOrdered,
	MaintenanceStatusInProgress,
	MaintenanceStatusCompleted,
	MaintenanceStatusCancelled,
}

// String implements fmt.Stringer.
func (m MaintenanceStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaintenanceStatus.
func (m MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}
