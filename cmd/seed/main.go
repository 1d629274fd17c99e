// Command seed populates a running server with demo accounts and posts via
// the public HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mwalczyk/socialfeed/internal/apiclient"
)

type seedAccount struct {
	username string
	email    string
	password string
	posts    []string
}

var seedAccounts = []seedAccount{
	{
		username: "ada",
		email:    "ada@example.com",
		password: "engines1843",
		posts: []string{
			"First post on the new feed. Hello world!",
			"Spent the evening untangling a race condition. The bug was in the check, not the write.",
		},
	},
	{
		username: "grace",
		email:    "grace@example.com",
		password: "nanoseconds9",
		posts: []string{
			"A ship in port is safe, but that is not what ships are built for.",
		},
	},
	{
		username: "linus",
		email:    "linus@example.com",
		password: "kernel2man",
		posts: []string{
			"Talk is cheap. Show me the code.",
			"Goodbye legacy endpoints, you will not be missed.",
		},
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var baseURL string
	flag.StringVar(&baseURL, "url", envOrDefault("SOCIALFEED_URL", "http://localhost:5000"), "Base URL of the running server")
	flag.Parse()

	ctx := context.Background()

	var firstPostID string
	for _, acct := range seedAccounts {
		client := apiclient.NewClient(baseURL)

		fmt.Printf("Registering %s...\n", acct.username)
		if err := client.Signup(ctx, acct.username, acct.email, acct.password); err != nil {
			return err
		}
		if err := client.Signin(ctx, acct.username, acct.password); err != nil {
			return err
		}

		for _, content := range acct.posts {
			postID, err := client.CreatePost(ctx, content, "")
			if err != nil {
				return err
			}
			fmt.Printf("  posted %s\n", postID)
			if firstPostID == "" {
				firstPostID = postID
			}
		}

		// Everyone engages with the very first post.
		if firstPostID != "" {
			if err := client.AddLike(ctx, firstPostID); err != nil {
				fmt.Printf("  like skipped: %v\n", err)
			}
			if err := client.AddComment(ctx, firstPostID, "Welcome to the feed, "+acct.username+" was here."); err != nil {
				return err
			}
		}
	}

	fmt.Println("Seeding complete.")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
