package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/config"
	"github.com/aora/backend/internal/feed"
	"github.com/aora/backend/internal/models"
	"github.com/aora/backend/internal/service"
)

// EmptySavedMessage is printed when the user has no bookmarked posts.
const EmptySavedMessage = "No Saved Videos Found"

func runSaved(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("usage: saved <email> <password>")
	}
	return withService(ctx, func(svc *service.Service) error {
		return printSaved(ctx, svc, out, args[0], args[1])
	})
}

func runBookmark(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 3 {
		return errors.New("usage: bookmark <email> <password> <video-id>")
	}
	return withService(ctx, func(svc *service.Service) error {
		return toggleBookmark(ctx, svc, out, args[0], args[1], args[2])
	})
}

func withService(ctx context.Context, fn func(*service.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(svc)
}

// signedIn opens a session and returns a context carrying it with the user behind it.
func signedIn(ctx context.Context, svc *service.Service, email, password string) (context.Context, models.User, error) {
	session, err := svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, models.User{}, err
	}
	ctx = auth.WithSessionSecret(ctx, session.Secret)
	user, ok := svc.GetCurrentUser(ctx)
	if !ok {
		return nil, models.User{}, fmt.Errorf("no user document for %s", email)
	}
	return ctx, user, nil
}

func printSaved(ctx context.Context, svc *service.Service, out io.Writer, email, password string) error {
	ctx, user, err := signedIn(ctx, svc, email, password)
	if err != nil {
		return err
	}
	defer func() { _ = svc.SignOut(ctx) }()

	saved := feed.NewLoader(func(ctx context.Context) ([]models.Video, error) {
		return svc.GetSavedVideos(ctx, user.ID)
	})
	state := saved.Load(ctx)
	if state.Err != nil {
		return state.Err
	}
	return writeVideos(out, state.Data)
}

func toggleBookmark(ctx context.Context, svc *service.Service, out io.Writer, email, password, videoID string) error {
	ctx, user, err := signedIn(ctx, svc, email, password)
	if err != nil {
		return err
	}
	defer func() { _ = svc.SignOut(ctx) }()

	posts := feed.NewLoader(svc.GetAllPosts)
	state := posts.Load(ctx)
	if state.Err != nil {
		return state.Err
	}

	var card *feed.Card
	for _, video := range state.Data {
		if video.ID == videoID {
			card = feed.NewCard(video)
			break
		}
	}
	if card == nil {
		return fmt.Errorf("video %s not found", videoID)
	}

	refetch := func(ctx context.Context) error { return posts.Refresh(ctx).Err }
	if err := feed.Toggle(ctx, card, user.ID, svc, refetch); err != nil {
		return err
	}

	verb := "removed bookmark from"
	if card.Bookmarked(user.ID) {
		verb = "bookmarked"
	}
	fmt.Fprintf(out, "%s %q\n", verb, card.Video().Title)
	return nil
}

func writeVideos(out io.Writer, videos []models.Video) error {
	if len(videos) == 0 {
		_, err := fmt.Fprintln(out, EmptySavedMessage)
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATOR\tCREATED")
	for _, v := range videos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Title, v.Creator.Username, v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
