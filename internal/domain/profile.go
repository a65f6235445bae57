package domain

import "strings"

// PatientProfilePatch lists the profile fields a patient may change. Nil or blank fields are left untouched.
type PatientProfilePatch struct {
	Name          *string `json:"name"`
	ContactNumber *string `json:"contactNumber"`
	About         *string `json:"about"`
	Email         *string `json:"email"`
}

// DoctorProfilePatch adds the specialization to the patient set.
type DoctorProfilePatch struct {
	PatientProfilePatch
	Specialization *string `json:"specialization"`
}

// Apply copies supplied fields onto u and reports whether the email changed.
func (p PatientProfilePatch) Apply(u *User) (emailChanged bool) {
	if v, ok := supplied(p.Name); ok {
		u.Name = v
	}
	if v, ok := supplied(p.ContactNumber); ok {
		u.ContactNumber = v
	}
	if v, ok := supplied(p.About); ok {
		u.About = v
	}
	if v, ok := supplied(p.Email); ok {
		v = NormalizeEmail(v)
		emailChanged = v != u.Email
		u.Email = v
	}
	return emailChanged
}

// Apply copies supplied fields onto u and reports whether the email changed.
func (p DoctorProfilePatch) Apply(u *User) bool {
	changed := p.PatientProfilePatch.Apply(u)
	if v, ok := supplied(p.Specialization); ok {
		u.Specialization = v
	}
	return changed
}

func supplied(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}
