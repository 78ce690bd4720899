package models

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestProfileShare_OnlyNamedAttributes(t *testing.T) {
	p := Profile{Username: "amy", FullName: "Amy Smith", City: "Lisbon", Country: "PT"}

	sp := p.Share([]string{"username", "city"})

	assert.Equal(t, "amy", *sp.Username)
	assert.Equal(t, "Lisbon", *sp.City)
	assert.Equal(t, true, sp.FullName == nil)
	assert.Equal(t, true, sp.Country == nil)
	assert.Equal(t, []string{"username", "city"}, sp.Fields())
}

func TestProfileShare_BlankSharedUnknownSkipped(t *testing.T) {
	p := Profile{Username: "amy"}

	sp := p.Share([]string{"occupation", "shoeSize", "username"})

	assert.Equal(t, []string{"username", "occupation"}, sp.Fields())
	assert.Equal(t, "", *sp.Occupation)
	assert.Equal(t, true, sp.City == nil)
}

func TestProfileShare_CopiesValues(t *testing.T) {
	p := Profile{Username: "amy"}
	sp := p.Share([]string{"username"})
	p.Username = "changed"
	assert.Equal(t, "amy", *sp.Username)
}

func TestUpsertProfileRequest_Validate(t *testing.T) {
	empty := " "
	req := UpsertProfileRequest{Username: &empty}
	errs := req.Validate(false)
	assert.Equal(t, "Username cannot be empty", errs["username"])

	errs = (&UpsertProfileRequest{}).Validate(true)
	assert.Equal(t, "Username is required", errs["username"])

	bad := "01/02/1990"
	errs = (&UpsertProfileRequest{DateOfBirth: &bad}).Validate(false)
	assert.Equal(t, "Date of birth must be formatted yyyy-mm-dd", errs["dateOfBirth"])

	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	errs = (&UpsertProfileRequest{DateOfBirth: &future}).Validate(false)
	assert.Equal(t, "Date of birth cannot be in the future", errs["dateOfBirth"])
}

func TestUpsertProfileRequest_Apply(t *testing.T) {
	name, city := " amy ", "Porto"
	p := Profile{Username: "old", Country: "PT"}
	(&UpsertProfileRequest{Username: &name, City: &city}).Apply(&p)

	assert.Equal(t, "amy", p.Username)
	assert.Equal(t, "Porto", p.City)
	assert.Equal(t, "PT", p.Country)
}

func TestFollowRequest_Validate(t *testing.T) {
	errs := (&FollowRequest{}).Validate()
	assert.Equal(t, 2, len(errs))

	errs = (&FollowRequest{DID: "did:example:bob", AssignedName: "Bob", SharedProfileAttributes: []string{"password"}}).Validate()
	assert.Equal(t, "Unknown profile attribute: password", errs["sharedProfileAttributes"])

	errs = (&FollowRequest{DID: "did:example:bob", AssignedName: "Bob", SharedProfileAttributes: []string{"username"}}).Validate()
	assert.Equal(t, 0, len(errs))
}

func TestSessionRequest_Validate(t *testing.T) {
	errs := (&SessionRequest{DID: "bob", Passphrase: "short"}).Validate()
	assert.Equal(t, "DID must start with did:", errs["did"])
	assert.Equal(t, "Passphrase must be at least 8 characters", errs["passphrase"])
}

func TestCreatePostRequest_Validate(t *testing.T) {
	errs := (&CreatePostRequest{Content: "  "}).Validate()
	assert.Equal(t, 2, len(errs))
}
