package models

import (
	"strings"
	"time"
)

// Profile is the single profile record an identity keeps in its own store.
type Profile struct {
	RecordID    string `json:"recordId"`
	ContextID   string `json:"contextId"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	DateOfBirth string `json:"dateOfBirth"` // yyyy-mm-dd
	Occupation  string `json:"occupation"`
	Gender      string `json:"gender"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// ProfileData is the stored payload of a profile record.
type ProfileData struct {
	Username    string `json:"username"`
	FullName    string `json:"fullName,omitempty"`
	Description string `json:"description,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	Gender      string `json:"gender,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

func (p *Profile) Data() ProfileData {
	return ProfileData{
		Username:    p.Username,
		FullName:    p.FullName,
		Description: p.Description,
		DateOfBirth: p.DateOfBirth,
		Occupation:  p.Occupation,
		Gender:      p.Gender,
		City:        p.City,
		Country:     p.Country,
	}
}

// ProfileAttributes are the attribute names a follower may choose to share.
var ProfileAttributes = []string{
	"username",
	"fullName",
	"description",
	"dateOfBirth",
	"occupation",
	"gender",
	"city",
	"country",
}

func IsProfileAttribute(name string) bool {
	for _, a := range ProfileAttributes {
		if a == name {
			return true
		}
	}
	return false
}

// attribute returns a pointer to the named field, or nil for unknown names.
func (p *Profile) attribute(name string) *string {
	switch name {
	case "username":
		return &p.Username
	case "fullName":
		return &p.FullName
	case "description":
		return &p.Description
	case "dateOfBirth":
		return &p.DateOfBirth
	case "occupation":
		return &p.Occupation
	case "gender":
		return &p.Gender
	case "city":
		return &p.City
	case "country":
		return &p.Country
	}
	return nil
}

// Share projects the named attributes into a SharedProfile. Unknown names
// are left out; a named attribute the profile leaves blank is shared as "".
func (p *Profile) Share(attributes []string) SharedProfile {
	var sp SharedProfile
	for _, name := range attributes {
		v := p.attribute(name)
		if v == nil {
			continue
		}
		val := *v
		*sp.attribute(name) = &val
	}
	return sp
}

type UpsertProfileRequest struct {
	Username    *string `json:"username"`
	FullName    *string `json:"fullName"`
	Description *string `json:"description"`
	DateOfBirth *string `json:"dateOfBirth"`
	Occupation  *string `json:"occupation"`
	Gender      *string `json:"gender"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

// Apply copies the set fields of the request onto p.
func (r *UpsertProfileRequest) Apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Username, r.Username)
	set(&p.FullName, r.FullName)
	set(&p.Description, r.Description)
	set(&p.DateOfBirth, r.DateOfBirth)
	set(&p.Occupation, r.Occupation)
	set(&p.Gender, r.Gender)
	set(&p.City, r.City)
	set(&p.Country, r.Country)
}

// Validate checks the request. creating requires a username.
func (r *UpsertProfileRequest) Validate(creating bool) map[string]string {
	errors := make(map[string]string)

	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		errors["username"] = "Username cannot be empty"
	} else if creating && r.Username == nil {
		errors["username"] = "Username is required"
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *r.DateOfBirth)
		if err != nil {
			errors["dateOfBirth"] = "Date of birth must be formatted yyyy-mm-dd"
		} else if dob.After(time.Now()) {
			errors["dateOfBirth"] = "Date of birth cannot be in the future"
		}
	}

	return errors
}
