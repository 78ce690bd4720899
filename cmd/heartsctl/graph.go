package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

var followShare []string

var followingCmd = &cobra.Command{
	Use:   "following",
	Short: "List the DIDs this identity follows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			following, err := s.Follows.GetFollowing(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, following)
		})
	},
}

var followersCmd = &cobra.Command{
	Use:   "followers",
	Short: "List the DIDs following this identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			followers, err := s.Follows.GetFollowers(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, followers)
		})
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <did> <name>",
	Short: "Follow a DID under a private name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.FollowRequest{DID: args[0], AssignedName: args[1], SharedProfileAttributes: followShare}
		if errs := req.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid follow: %v", errs)
		}
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			profile, err := s.Profiles.GetProfile(ctx)
			if err != nil && err != services.ErrProfileNotFound {
				return err
			}
			receipt, err := s.Follows.Follow(ctx, profile, req.DID, req.AssignedName, req.SharedProfileAttributes)
			if err == services.ErrAlreadyFollowing {
				fmt.Fprintln(cmd.OutOrStdout(), "already following", req.DID)
				return nil
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, receipt)
		})
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <record-id> <did>",
	Short: "Remove a following record locally and from the peer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			return s.Follows.Unfollow(ctx, args[0], args[1])
		})
	},
}

func init() {
	followCmd.Flags().StringSliceVar(&followShare, "share", nil, "profile attributes to share, e.g. username,city")
	rootCmd.AddCommand(followingCmd, followersCmd, followCmd, unfollowCmd)
}
