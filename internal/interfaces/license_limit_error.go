package interfaces

import "fmt"

// LicenseLimitError is returned when an administrator has no free license left
// for another active user.
type LicenseLimitError struct {
	AdminID      string
	LicenseCount int
	ActiveUsers  int
}

func (e *LicenseLimitError) Error() string {
	return fmt.Sprintf("license limit reached: %d of %d active users", e.ActiveUsers, e.LicenseCount)
}
