package detection

import "slices"

// Filter restricts a detection query to an organization and/or a camera set.
// Zero values mean "any".
type Filter struct {
	OrganizationID uint   `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`
	CameraIDs      []uint `json:"camera_ids,omitempty" yaml:"camera_ids,omitempty"`
}

// Matches reports whether a camera owned by organizationID passes the filter
func (f Filter) Matches(organizationID, cameraID uint) bool {
	if f.OrganizationID != 0 && f.OrganizationID != organizationID {
		return false
	}
	if len(f.CameraIDs) > 0 && !slices.Contains(f.CameraIDs, cameraID) {
		return false
	}
	return true
}

// WithCamera returns a copy of the filter restricted to a single camera
func (f Filter) WithCamera(cameraID uint) Filter {
	return Filter{OrganizationID: f.OrganizationID, CameraIDs: []uint{cameraID}}
}

// Clone returns a copy of the filter that shares no memory with f
func (f Filter) Clone() Filter {
	return Filter{OrganizationID: f.OrganizationID, CameraIDs: slices.Clone(f.CameraIDs)}
}
