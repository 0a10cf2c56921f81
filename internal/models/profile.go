package models

import "github.com/google/uuid"

// Profile holds optional presentation data of a user. It is created lazily
// on the first edit or avatar upload.
type Profile struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Avatar      *string   `json:"avatar"`
	DateOfBirth *string   `json:"dateOfBirth"`
	CompanyName *string   `json:"companyName"`
}

// ProfileUpdate lists the profile columns a profile edit may touch.
type ProfileUpdate struct {
	Avatar      Optional[string]
	DateOfBirth Optional[string]
	CompanyName Optional[string]
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return !p.Avatar.Set && !p.DateOfBirth.Set && !p.CompanyName.Set
}

// Columns maps the supplied fields to column updates. Null values map to nil.
func (p ProfileUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	p.Avatar.put(cols, "avatar")
	p.DateOfBirth.put(cols, "date_of_birth")
	p.CompanyName.put(cols, "company_name")
	return cols
}

// Apply writes the supplied fields onto profile.
func (p ProfileUpdate) Apply(profile *Profile) {
	p.Avatar.assign(&profile.Avatar)
	p.DateOfBirth.assign(&profile.DateOfBirth)
	p.CompanyName.assign(&profile.CompanyName)
}
