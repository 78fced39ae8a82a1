package gitkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// AuthParams encapsulates credentials used for clone operations.
type AuthParams struct {
	Token    string
	Username string
	Password string
}

// Author of commits made by the service.
var Author = object.Signature{Name: "dataworks", Email: "dataworks@example.com"}

func prepareAuth(remoteURL string, p AuthParams) transport.AuthMethod {
	if !strings.HasPrefix(remoteURL, "https://") && !strings.HasPrefix(remoteURL, "http://") {
		return nil
	}
	token := p.Token
	if token == "" {
		token = os.Getenv("GIT_TOKEN")
	}
	if token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	username := p.Username
	if username == "" {
		username = os.Getenv("GIT_USERNAME")
	}
	password := p.Password
	if password == "" {
		password = os.Getenv("GIT_PASSWORD")
	}
	if username != "" && password != "" {
		return &http.BasicAuth{Username: username, Password: password}
	}
	return nil
}

// Clone clones url into dir. An existing repository at dir is opened instead.
func Clone(ctx context.Context, url, dir string, p AuthParams) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: prepareAuth(url, p),
	})
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}
	return repo, nil
}

// Commit writes content to name inside the worktree of dir, stages it and
// commits. It returns the commit hash.
func Commit(dir, name string, content []byte, msg string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return "", err
	}
	if _, err := wt.Add(name); err != nil {
		return "", err
	}
	author := Author
	author.When = time.Now()
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &author,
	})
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// Head returns the hash of the current HEAD commit.
func Head(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}
