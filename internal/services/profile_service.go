package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/protocol"
	"github.com/cryptichearts/backend/internal/records"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

type ProfileService struct {
	client records.Client
	limit  int
}

func NewProfileService(client records.Client, opts Options) *ProfileService {
	opts = opts.withDefaults()
	return &ProfileService{client: client, limit: opts.BatchLimit}
}

func (s *ProfileService) GetProfile(ctx context.Context) (*models.Profile, error) {
	recs, err := s.client.Query(ctx, records.Profiles().By(s.client.DID()))
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrProfileNotFound
	}
	return profileFromRecord(recs[0])
}

func (s *ProfileService) CreateProfile(ctx context.Context, req *models.UpsertProfileRequest) (*models.Profile, error) {
	if _, err := s.GetProfile(ctx); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	var p models.Profile
	req.Apply(&p)
	rec, st, err := s.client.Create(ctx, records.CreateRequest{Path: protocol.PathProfile, Data: p.Data()})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if !st.OK() {
		return nil, &StatusError{Op: "create profile", Status: st}
	}
	p.RecordID = rec.ID
	p.ContextID = rec.ContextID
	glog.Infof("[CreateProfile] did=%s record=%s", s.client.DID(), rec.ID)
	return &p, nil
}

// UpdateProfile applies the set fields of req to the stored profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, req *models.UpsertProfileRequest) (*models.Profile, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	req.Apply(p)
	if _, st, err := s.client.Update(ctx, p.RecordID, p.Data()); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	} else if !st.OK() {
		return nil, &StatusError{Op: "update profile", Status: st}
	}
	return p, nil
}

// BroadcastSharedProfile replaces what the caller shares with each followed
// peer by the given attributes of the current profile, then re-sends the
// following edge and its shared profile to the peer. Peers the caller does
// not follow get ErrNotFollowing in their report.
func (s *ProfileService) BroadcastSharedProfile(ctx context.Context, peers []string, attributes []string) ([]models.DeliveryReport, error) {
	profile, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	shared := profile.Share(attributes)
	self := s.client.DID()

	results := fanOut(ctx, s.limit, dedupe(peers), func(ctx context.Context, peer string) (bool, error) {
		edges, err := s.client.Query(ctx, records.Followings().By(self).To(peer))
		if err != nil {
			return false, err
		}
		if len(edges) == 0 {
			return false, ErrNotFollowing
		}
		edge := edges[0]

		children, err := s.client.Query(ctx, records.SharedProfiles(edge.ID).By(self))
		if err != nil {
			return false, err
		}
		var childID string
		if len(children) > 0 {
			childID = children[0].ID
			_, st, err := s.client.Update(ctx, childID, shared)
			if err != nil {
				return false, err
			}
			if !st.OK() {
				return false, &StatusError{Op: "update shared profile", Status: st}
			}
		} else {
			rec, st, err := s.client.Create(ctx, records.CreateRequest{
				Path:      protocol.PathSharedProfile,
				Data:      shared,
				Recipient: peer,
				ParentID:  edge.ID,
				ContextID: edge.ContextID,
			})
			if err != nil {
				return false, err
			}
			if !st.OK() {
				return false, &StatusError{Op: "create shared profile", Status: st}
			}
			childID = rec.ID
		}

		// the edge may never have reached the peer; the child cannot land without it
		ok := replicate(ctx, s.client, "BroadcastSharedProfile", edge.ID, peer)
		return replicate(ctx, s.client, "BroadcastSharedProfile", childID, peer) && ok, nil
	})

	return deliveryReports(results), nil
}

func profileFromRecord(rec *records.Record) (*models.Profile, error) {
	var data models.ProfileData
	if err := rec.DecodeData(&data); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", rec.ID, err)
	}
	return &models.Profile{
		RecordID:    rec.ID,
		ContextID:   rec.ContextID,
		Username:    data.Username,
		FullName:    data.FullName,
		Description: data.Description,
		DateOfBirth: data.DateOfBirth,
		Occupation:  data.Occupation,
		Gender:      data.Gender,
		City:        data.City,
		Country:     data.Country,
	}, nil
}

// deliveryReports turns per-peer results into reports. A result value of true
// means the record reached the peer's store.
func deliveryReports(results []Result[string, bool]) []models.DeliveryReport {
	out := make([]models.DeliveryReport, 0, len(results))
	for _, r := range results {
		rep := models.DeliveryReport{DID: r.Item, Stored: r.Err == nil, Replicated: r.Value}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		out = append(out, rep)
	}
	return out
}

// dedupe drops empty and repeated DIDs, keeping first-seen order.
func dedupe(dids []string) []string {
	seen := make(map[string]bool, len(dids))
	out := make([]string, 0, len(dids))
	for _, d := range dids {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
