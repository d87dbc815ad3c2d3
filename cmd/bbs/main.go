// Command bbs reads the board from a terminal: one listing page, or one post
// with its comment thread.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"bulletinboard/internal/editor"
	"bulletinboard/internal/gateway"
	"bulletinboard/internal/model"
	"bulletinboard/internal/pagination"
	"bulletinboard/internal/thread"
)

func main() {
	apiURL := flag.String("api", envOr("API_BASE_URL", "http://localhost:8080/api"), "board API base URL")
	page := flag.Int("page", 1, "listing page to show")
	postID := flag.Int64("post", 0, "show this post and its comments instead of the listing")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	log.SetFlags(0)
	api := gateway.New(*apiURL, *timeout)
	ctx := context.Background()

	var err error
	if *postID > 0 {
		err = showPost(ctx, api, *postID)
	} else {
		err = showList(ctx, api, *page)
	}
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			log.Fatalf("bbs: not found")
		}
		log.Fatalf("bbs: %v", err)
	}
}

func showList(ctx context.Context, api *gateway.Client, page int) error {
	res, err := api.ListPosts(ctx, max(page, 1), model.DefaultPageSize)
	if err != nil {
		return err
	}
	fmt.Println(renderList(res.PostList, pagination.New(res.CurrentPage, res.TotalPages)))
	return nil
}

func showPost(ctx context.Context, api *gateway.Client, postID int64) error {
	var (
		post     *model.Post
		comments []model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		post, err = api.FetchPost(gctx, postID)
		return err
	})
	g.Go(func() (err error) {
		comments, err = api.FetchComments(gctx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, issue := range thread.CheckOrder(comments) {
		log.Printf("warning: %s", issue)
	}
	fmt.Println(renderThread(thread.Render(post, comments, thread.Viewer{}, editor.Idle{})))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
