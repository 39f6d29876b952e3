package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Result describes what a sync did to the working copy.
type Result struct {
	Cloned   bool
	UpToDate bool
	Revision string
}

// Syncer maintains a local working copy of the repository being
// deployed. The access token is injected at the transport layer via
// HTTP basic auth, so it never appears in the remote URL, the on-disk
// git config, process listings, or logs.
type Syncer struct {
	RepoURL string
	Branch  string
	Token   string
}

// New creates a Syncer for the given repository and branch.
func New(repoURL, branch, token string) *Syncer {
	return &Syncer{RepoURL: repoURL, Branch: branch, Token: token}
}

// auth returns the transport credential for HTTP remotes. Local-path
// remotes (used in tests) take no auth.
func (s *Syncer) auth() transport.AuthMethod {
	if s.Token == "" || !strings.HasPrefix(s.RepoURL, "http") {
		return nil
	}
	return &githttp.BasicAuth{Username: "git", Password: s.Token}
}

// Sync clones the repository into dir, or brings an existing working
// copy up to date: fetch, check out the requested branch (creating a
// tracking branch when it does not exist locally), and fast-forward.
// A second run with no upstream changes reports UpToDate.
func (s *Syncer) Sync(ctx context.Context, dir string) (*Result, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return s.clone(ctx, dir)
	}
	return s.update(ctx, dir)
}

func (s *Syncer) clone(ctx context.Context, dir string) (*Result, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           s.RepoURL,
		Auth:          s.auth(),
		ReferenceName: plumbing.NewBranchReferenceName(s.Branch),
		SingleBranch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s (branch %s): %w", s.RepoURL, s.Branch, err)
	}

	rev, err := headRevision(repo)
	if err != nil {
		return nil, err
	}
	return &Result{Cloned: true, Revision: rev}, nil
}

func (s *Syncer) update(ctx context.Context, dir string) (*Result, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open working copy %s: %w", dir, err)
	}

	if err := s.updateRemoteURL(repo); err != nil {
		return nil, err
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		Auth:       s.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to fetch from %s: %w", s.RepoURL, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := s.checkoutBranch(repo, worktree); err != nil {
		return nil, err
	}

	result := &Result{}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(s.Branch),
		Auth:          s.auth(),
		SingleBranch:  true,
	})
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		result.UpToDate = true
	case err != nil:
		return nil, fmt.Errorf("failed to fast-forward %s: %w", s.Branch, err)
	}

	result.Revision, err = headRevision(repo)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// updateRemoteURL rewrites origin when the configured repository URL
// changed between runs. Credentials are not part of the URL, so a
// token rotation alone needs no rewrite.
func (s *Syncer) updateRemoteURL(repo *git.Repository) error {
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repo config: %w", err)
	}
	origin, ok := cfg.Remotes["origin"]
	if !ok {
		return fmt.Errorf("working copy has no origin remote")
	}
	if len(origin.URLs) > 0 && origin.URLs[0] == s.RepoURL {
		return nil
	}
	origin.URLs = []string{s.RepoURL}
	if err := repo.Storer.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to update remote URL: %w", err)
	}
	return nil
}

// checkoutBranch switches to the requested branch. If no local branch
// exists yet it is created from the remote-tracking ref.
func (s *Syncer) checkoutBranch(repo *git.Repository, worktree *git.Worktree) error {
	localRef := plumbing.NewBranchReferenceName(s.Branch)

	if _, err := repo.Reference(localRef, true); err == nil {
		if err := worktree.Checkout(&git.CheckoutOptions{Branch: localRef}); err != nil {
			return fmt.Errorf("failed to check out %s: %w", s.Branch, err)
		}
		return nil
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", s.Branch), true)
	if err != nil {
		return fmt.Errorf("branch %s not found on origin: %w", s.Branch, err)
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Hash:   remoteRef.Hash(),
		Branch: localRef,
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create local branch %s: %w", s.Branch, err)
	}
	return nil
}

func headRevision(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
