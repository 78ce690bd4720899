package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/services"
)

var (
	postTo    []string
	postImage string
	replyTo   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show this identity's profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			p, err := s.Profiles.GetProfile(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		})
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Show the timeline, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			posts, err := s.Posts.Timeline(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, posts)
		})
	},
}

var postCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Post to the DIDs given with --to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.CreatePostRequest{Content: args[0], Recipients: postTo}
		if postImage != "" {
			img, err := os.ReadFile(postImage)
			if err != nil {
				return err
			}
			req.Image = img
		}
		if errs := req.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid post: %v", errs)
		}
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			receipt, err := s.Posts.CreatePost(ctx, &req)
			if err != nil {
				return err
			}
			return printJSON(cmd, receipt)
		})
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages <did>",
	Short: "Show the conversation with a DID, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			msgs, err := s.Messages.GetMessages(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, msgs)
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <did> <content>",
	Short: "Send a message to a DID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := models.SendMessageRequest{Content: args[1], ReplyTo: replyTo}
		if errs := req.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid message: %v", errs)
		}
		return withSession(cmd, func(ctx context.Context, s *services.Session) error {
			msg, err := s.Messages.SendMessage(ctx, args[0], &req)
			if err != nil {
				return err
			}
			return printJSON(cmd, msg)
		})
	},
}

func init() {
	postCmd.Flags().StringSliceVar(&postTo, "to", nil, "recipient DIDs")
	postCmd.Flags().StringVar(&postImage, "image", "", "path to an image to attach")
	sendCmd.Flags().StringVar(&replyTo, "reply-to", "", "record id of the message being answered")
	rootCmd.AddCommand(profileCmd, postsCmd, postCmd, messagesCmd, sendCmd)
}
