package records

import "github.com/cryptichearts/backend/internal/protocol"

// Filter selects records inside one tenant. Empty fields match anything.
type Filter struct {
	Path      protocol.Path
	Author    string
	Recipient string
	ParentID  string
	RecordID  string
}

func (f Filter) Matches(r *Record) bool {
	if f.Path != "" && r.ProtocolPath != f.Path {
		return false
	}
	if f.Author != "" && r.Author != f.Author {
		return false
	}
	if f.Recipient != "" && r.Recipient != f.Recipient {
		return false
	}
	if f.ParentID != "" && r.ParentID != f.ParentID {
		return false
	}
	if f.RecordID != "" && r.ID != f.RecordID {
		return false
	}
	return true
}

// Query is built from one of the per-type constructors below, which fix
// protocol, path and schema together. The zero Query is rejected by clients.
type Query struct {
	from   string
	filter Filter
}

func Profiles() Query   { return Query{filter: Filter{Path: protocol.PathProfile}} }
func Followings() Query { return Query{filter: Filter{Path: protocol.PathFollowing}} }
func Posts() Query      { return Query{filter: Filter{Path: protocol.PathPost}} }
func Messages() Query   { return Query{filter: Filter{Path: protocol.PathMessage}} }

// SharedProfiles selects the shared-profile children of one following record.
func SharedProfiles(followingID string) Query {
	return Query{filter: Filter{Path: protocol.PathSharedProfile, ParentID: followingID}}
}

// By restricts the query to records authored by did.
func (q Query) By(did string) Query {
	q.filter.Author = did
	return q
}

// To restricts the query to records addressed to did.
func (q Query) To(did string) Query {
	q.filter.Recipient = did
	return q
}

// From runs the query against did's tenant instead of the caller's own.
func (q Query) From(did string) Query {
	q.from = did
	return q
}

func (q Query) WithID(recordID string) Query {
	q.filter.RecordID = recordID
	return q
}

func (q Query) Filter() Filter { return q.filter }

// Source is the tenant named by From, or "" for the caller's own.
func (q Query) Source() string { return q.from }
