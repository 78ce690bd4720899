package models

// SharedProfile is the subset of a profile a follower exposes to one peer.
// A nil field was not shared.
type SharedProfile struct {
	RecordID    string  `json:"recordId,omitempty"`
	ContextID   string  `json:"contextId,omitempty"`
	Username    *string `json:"username,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	Description *string `json:"description,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Occupation  *string `json:"occupation,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
}

func (sp *SharedProfile) attribute(name string) **string {
	switch name {
	case "username":
		return &sp.Username
	case "fullName":
		return &sp.FullName
	case "description":
		return &sp.Description
	case "dateOfBirth":
		return &sp.DateOfBirth
	case "occupation":
		return &sp.Occupation
	case "gender":
		return &sp.Gender
	case "city":
		return &sp.City
	case "country":
		return &sp.Country
	}
	return nil
}

// Fields lists the names of the attributes that are set.
func (sp *SharedProfile) Fields() []string {
	var out []string
	for _, name := range ProfileAttributes {
		if *sp.attribute(name) != nil {
			out = append(out, name)
		}
	}
	return out
}

// FollowingData is the stored payload of a following record.
type FollowingData struct {
	DID          string `json:"did"`
	AssignedName string `json:"assignedName"`
}

// Following is an edge from the caller to the peer in DID.
type Following struct {
	DID           string         `json:"did"`
	AssignedName  string         `json:"assignedName"`
	RecordID      string         `json:"recordId"`
	ContextID     string         `json:"contextId"`
	SharedProfile *SharedProfile `json:"sharedProfile,omitempty"`
}

// Follower is a peer whose following edge points at the caller.
type Follower struct {
	DID           string         `json:"did"`
	RecordID      string         `json:"recordId,omitempty"`
	SharedProfile *SharedProfile `json:"sharedProfile,omitempty"`
}

// Relationship is both directions of the graph between the caller and one peer.
type Relationship struct {
	DID       string     `json:"did"`
	Following *Following `json:"following,omitempty"`
	Follower  *Follower  `json:"follower,omitempty"`
}

type FollowRequest struct {
	DID                     string   `json:"did"`
	AssignedName            string   `json:"assignedName"`
	SharedProfileAttributes []string `json:"sharedProfileAttributes"`
}

func (r *FollowRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.DID == "" {
		errors["did"] = "DID is required"
	}
	if r.AssignedName == "" {
		errors["assignedName"] = "Assigned name is required"
	}
	for _, a := range r.SharedProfileAttributes {
		if !IsProfileAttribute(a) {
			errors["sharedProfileAttributes"] = "Unknown profile attribute: " + a
			break
		}
	}

	return errors
}

type ShareProfileRequest struct {
	DIDs                    []string `json:"dids"`
	SharedProfileAttributes []string `json:"sharedProfileAttributes"`
}

func (r *ShareProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if len(r.DIDs) == 0 {
		errors["dids"] = "Select at least one DID"
	}
	for _, a := range r.SharedProfileAttributes {
		if !IsProfileAttribute(a) {
			errors["sharedProfileAttributes"] = "Unknown profile attribute: " + a
			break
		}
	}

	return errors
}
