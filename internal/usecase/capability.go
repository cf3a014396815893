package usecase

import "fmt"

// Capability is the authorization the transport layer derived for a caller.
// Privileged operations take it explicitly and never see credentials.
type Capability struct {
	IsAuthorized bool
	Subject      string
}

// AdminCapability is a granted capability for internal callers and tests.
func AdminCapability(subject string) Capability {
	return Capability{IsAuthorized: true, Subject: subject}
}

func (c Capability) require(action string) error {
	if !c.IsAuthorized {
		return fmt.Errorf("%w: %s requires admin capability", ErrUnauthorized, action)
	}
	return nil
}
