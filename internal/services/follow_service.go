package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/protocol"
	"github.com/cryptichearts/backend/internal/records"
)

var (
	ErrAlreadyFollowing = errors.New("already following this DID")
	ErrNotFollowing     = errors.New("not following this DID")
	ErrPeerMismatch     = errors.New("following record is addressed to another DID")
	ErrFollowSelf       = errors.New("cannot follow yourself")
)

type FollowService struct {
	client records.Client
	limit  int
}

func NewFollowService(client records.Client, opts Options) *FollowService {
	opts = opts.withDefaults()
	return &FollowService{client: client, limit: opts.BatchLimit}
}

// FollowReceipt is the result of a successful Follow. Replicated is false when
// either record failed to reach the peer; the local edge exists regardless.
type FollowReceipt struct {
	Following  models.Following `json:"following"`
	Replicated bool             `json:"replicated"`
}

// GetFollowing lists the caller's own following edges, each with the profile
// subset shared with that peer.
func (s *FollowService) GetFollowing(ctx context.Context) ([]models.Following, error) {
	self := s.client.DID()
	recs, err := s.client.Query(ctx, records.Followings().By(self))
	if err != nil {
		return nil, fmt.Errorf("query following: %w", err)
	}

	results := fanOut(ctx, s.limit, recs, func(ctx context.Context, rec *records.Record) (models.Following, error) {
		f, err := followingFromRecord(rec)
		if err != nil {
			return f, err
		}
		sp, err := s.sharedProfile(ctx, records.SharedProfiles(rec.ID).By(self))
		if err != nil {
			glog.Warningf("[GetFollowing] shared profile parent=%s error=%v", rec.ID, err)
			return f, nil
		}
		f.SharedProfile = sp
		return f, nil
	})

	out := make([]models.Following, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			glog.Warningf("[GetFollowing] skipping record=%s error=%v", r.Item.ID, r.Err)
			continue
		}
		out = append(out, r.Value)
	}
	return out, nil
}

// GetFollowers lists peers whose following edge names the caller. Peers
// replicate those edges into the caller's store, so the lookup is local.
func (s *FollowService) GetFollowers(ctx context.Context) ([]models.Follower, error) {
	self := s.client.DID()
	recs, err := s.client.Query(ctx, records.Followings().To(self))
	if err != nil {
		return nil, fmt.Errorf("query followers: %w", err)
	}

	edges := recs[:0]
	for _, rec := range recs {
		if rec.Author != self {
			edges = append(edges, rec)
		}
	}

	results := fanOut(ctx, s.limit, edges, func(ctx context.Context, rec *records.Record) (*models.SharedProfile, error) {
		return s.sharedProfile(ctx, records.SharedProfiles(rec.ID).To(self))
	})

	out := make([]models.Follower, 0, len(results))
	for _, r := range results {
		f := models.Follower{DID: r.Item.Author, RecordID: r.Item.ID}
		if r.Err != nil {
			glog.Warningf("[GetFollowers] shared profile parent=%s from=%s error=%v", r.Item.ID, r.Item.Author, r.Err)
		} else {
			f.SharedProfile = r.Value
		}
		out = append(out, f)
	}
	return out, nil
}

// Relationship reports both directions of the graph between the caller and peer.
func (s *FollowService) Relationship(ctx context.Context, peer string) (*models.Relationship, error) {
	self := s.client.DID()
	rel := &models.Relationship{DID: peer}

	out, err := s.client.Query(ctx, records.Followings().By(self).To(peer))
	if err != nil {
		return nil, fmt.Errorf("query following: %w", err)
	}
	if len(out) > 0 {
		f, err := followingFromRecord(out[0])
		if err != nil {
			return nil, err
		}
		if f.SharedProfile, err = s.sharedProfile(ctx, records.SharedProfiles(out[0].ID).By(self)); err != nil {
			glog.Warningf("[Relationship] shared profile parent=%s error=%v", out[0].ID, err)
		}
		rel.Following = &f
	}

	in, err := s.client.Query(ctx, records.Followings().By(peer).To(self))
	if err != nil {
		return nil, fmt.Errorf("query follower: %w", err)
	}
	if len(in) > 0 {
		f := &models.Follower{DID: peer, RecordID: in[0].ID}
		if f.SharedProfile, err = s.sharedProfile(ctx, records.SharedProfiles(in[0].ID).To(self)); err != nil {
			glog.Warningf("[Relationship] shared profile parent=%s from=%s error=%v", in[0].ID, peer, err)
		}
		rel.Follower = f
	}
	return rel, nil
}

// Follow creates a following edge to peer labelled label, plus a child record
// holding the attributes of profile the caller chose to share. Both records
// are then sent to peer. Following someone twice returns ErrAlreadyFollowing
// and writes nothing, so calling Follow again does not retry a failed send;
// BroadcastSharedProfile re-sends the edge and its child.
//
// The existence check and the create are not atomic: two concurrent calls for
// the same peer can both create an edge.
func (s *FollowService) Follow(ctx context.Context, profile *models.Profile, peer, label string, attributes []string) (*FollowReceipt, error) {
	self := s.client.DID()
	if peer == self {
		return nil, ErrFollowSelf
	}

	existing, err := s.client.Query(ctx, records.Followings().By(self).To(peer))
	if err != nil {
		return nil, fmt.Errorf("query following: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyFollowing
	}

	edge, st, err := s.client.Create(ctx, records.CreateRequest{
		Path:      protocol.PathFollowing,
		Data:      models.FollowingData{DID: peer, AssignedName: label},
		Recipient: peer,
	})
	if err != nil {
		return nil, fmt.Errorf("create following: %w", err)
	}
	if !st.OK() {
		return nil, &StatusError{Op: "create following", Status: st}
	}
	replicated := replicate(ctx, s.client, "Follow", edge.ID, peer)

	var shared models.SharedProfile
	if profile != nil {
		shared = profile.Share(attributes)
	}
	child, st, err := s.client.Create(ctx, records.CreateRequest{
		Path:      protocol.PathSharedProfile,
		Data:      shared,
		Recipient: peer,
		ParentID:  edge.ID,
		ContextID: edge.ContextID,
	})
	if err != nil {
		return nil, fmt.Errorf("create shared profile: %w", err)
	}
	if !st.OK() {
		return nil, &StatusError{Op: "create shared profile", Status: st}
	}
	replicated = replicate(ctx, s.client, "Follow", child.ID, peer) && replicated

	shared.RecordID = child.ID
	shared.ContextID = child.ContextID
	glog.Infof("[Follow] self=%s peer=%s record=%s replicated=%t", self, peer, edge.ID, replicated)

	return &FollowReceipt{
		Following: models.Following{
			DID:           peer,
			AssignedName:  label,
			RecordID:      edge.ID,
			ContextID:     edge.ContextID,
			SharedProfile: &shared,
		},
		Replicated: replicated,
	}, nil
}

// Unfollow deletes the edge recordID from the caller's store and from peer's.
// Only a following record authored by the caller and addressed to peer is
// touched; an edge addressed to someone else yields ErrPeerMismatch. A side
// that no longer holds the edge counts as deleted, so a retry after a partial
// failure converges. ErrNotFollowing means neither side had the edge.
func (s *FollowService) Unfollow(ctx context.Context, recordID, peer string) error {
	self := s.client.DID()

	local, err := s.edgeStatus(ctx, records.Followings().By(self).WithID(recordID), peer)
	if err != nil {
		return err
	}
	if local.OK() {
		if local, err = s.client.Delete(ctx, "", recordID); err != nil {
			return fmt.Errorf("delete local following: %w", err)
		}
	}

	remote, err := s.edgeStatus(ctx, records.Followings().From(peer).By(self).WithID(recordID), peer)
	if err != nil {
		return err
	}
	if remote.OK() {
		if remote, err = s.client.Delete(ctx, peer, recordID); err != nil {
			return fmt.Errorf("delete remote following: %w", err)
		}
	}

	if local.Code == http.StatusNotFound && remote.Code == http.StatusNotFound {
		return ErrNotFollowing
	}
	if !gone(local) || !gone(remote) {
		glog.Warningf("[Unfollow] record=%s peer=%s local=%s remote=%s", recordID, peer, local, remote)
		return &PartialDeleteError{RecordID: recordID, Peer: peer, Local: local, Remote: remote}
	}
	glog.Infof("[Unfollow] self=%s peer=%s record=%s", self, peer, recordID)
	return nil
}

// edgeStatus reports 200 when q finds the caller's edge to peer and 404 when
// it finds nothing.
func (s *FollowService) edgeStatus(ctx context.Context, q records.Query, peer string) (records.Status, error) {
	found, err := s.client.Query(ctx, q)
	if err != nil {
		return records.Status{}, fmt.Errorf("lookup following %s: %w", q.Filter().RecordID, err)
	}
	if len(found) == 0 {
		return records.Status{Code: http.StatusNotFound}, nil
	}
	if found[0].Recipient != peer {
		return records.Status{}, ErrPeerMismatch
	}
	return records.Status{Code: http.StatusOK}, nil
}

func gone(st records.Status) bool {
	return st.OK() || st.Code == http.StatusNotFound
}

// labels maps followed DIDs to the caller's names for them.
func (s *FollowService) labels(ctx context.Context) (map[string]string, error) {
	recs, err := s.client.Query(ctx, records.Followings().By(s.client.DID()))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(recs))
	for _, rec := range recs {
		f, err := followingFromRecord(rec)
		if err != nil {
			continue
		}
		if _, ok := out[f.DID]; !ok {
			out[f.DID] = f.AssignedName
		}
	}
	return out, nil
}

func (s *FollowService) sharedProfile(ctx context.Context, q records.Query) (*models.SharedProfile, error) {
	recs, err := s.client.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	var sp models.SharedProfile
	if err := recs[0].DecodeData(&sp); err != nil {
		return nil, err
	}
	sp.RecordID = recs[0].ID
	sp.ContextID = recs[0].ContextID
	return &sp, nil
}

func followingFromRecord(rec *records.Record) (models.Following, error) {
	var data models.FollowingData
	if err := rec.DecodeData(&data); err != nil {
		return models.Following{}, err
	}
	did := data.DID
	if did == "" {
		did = rec.Recipient
	}
	return models.Following{
		DID:          did,
		AssignedName: data.AssignedName,
		RecordID:     rec.ID,
		ContextID:    rec.ContextID,
	}, nil
}
