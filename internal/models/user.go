package models

// User is a registered account. The password is only ever kept as a bcrypt
// hash and neither the hash nor the reset version are serialized.
type User struct {
	BaseModel
	FullName     string   `gorm:"size:255;not null" json:"fullName"`
	Email        string   `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber  string   `gorm:"size:15;not null;index" json:"phoneNumber"`
	PasswordHash string   `gorm:"not null" json:"-"`
	ResetVersion int      `gorm:"not null;default:0" json:"-"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	Additional   *string  `json:"additional"`
	Profile      *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// UserUpdate lists the user columns a profile edit may touch.
type UserUpdate struct {
	FullName    Optional[string]
	Email       Optional[string]
	PhoneNumber Optional[string]
	Address     Optional[string]
	City        Optional[string]
	Additional  Optional[string]
}

// Empty reports whether no field was supplied.
func (u UserUpdate) Empty() bool {
	return !u.FullName.Set && !u.Email.Set && !u.PhoneNumber.Set &&
		!u.Address.Set && !u.City.Set && !u.Additional.Set
}

// Columns maps the supplied fields to column updates. Null values map to nil.
func (u UserUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	u.FullName.put(cols, "full_name")
	u.Email.put(cols, "email")
	u.PhoneNumber.put(cols, "phone_number")
	u.Address.put(cols, "address")
	u.City.put(cols, "city")
	u.Additional.put(cols, "additional")
	return cols
}

// Apply writes the supplied fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FullName.Set {
		user.FullName = u.FullName.Value
	}
	if u.Email.Set {
		user.Email = u.Email.Value
	}
	if u.PhoneNumber.Set {
		user.PhoneNumber = u.PhoneNumber.Value
	}
	u.Address.assign(&user.Address)
	u.City.assign(&user.City)
	u.Additional.assign(&user.Additional)
}
