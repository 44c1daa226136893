// Package git reads repository metadata (branch, origin URL, short commit)
// used to enrich outgoing notifications. It uses go-git, so no git binary is
// required on the host.
package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// shortHashLen matches `git rev-parse --short`.
const shortHashLen = 7

// Info is repository metadata. Each field is nil when it cannot be determined:
// Branch on a detached HEAD, Repo without an origin remote, Commit on an
// unborn branch.
type Info struct {
	Branch *string `json:"branch"`
	Repo   *string `json:"repo"`
	Commit *string `json:"commit"`
}

// Opener abstracts how a repository is opened so tests can use in-memory
// storage.
type Opener interface {
	Open(path string) (Repository, error)
}

// Repository is the subset of go-git the extractor needs.
type Repository interface {
	Head() (*plumbing.Reference, error)
	OriginURL() (string, error)
}

// DefaultOpener opens the repository containing path, walking up to find
// the .git directory.
type DefaultOpener struct{}

// Open opens the repository that contains path.
func (DefaultOpener) Open(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &goGitRepository{repo: repo}, nil
}

// InMemoryOpener returns a pre-built repository regardless of path.
type InMemoryOpener struct {
	repo *git.Repository
}

// NewInMemoryOpener wraps repo, typically backed by memory.NewStorage.
func NewInMemoryOpener(repo *git.Repository) *InMemoryOpener {
	return &InMemoryOpener{repo: repo}
}

// Open returns the wrapped repository.
func (i *InMemoryOpener) Open(_ string) (Repository, error) {
	if i.repo == nil {
		return nil, git.ErrRepositoryNotExists
	}
	return &goGitRepository{repo: i.repo}, nil
}

type goGitRepository struct {
	repo *git.Repository
}

func (r *goGitRepository) Head() (*plumbing.Reference, error) {
	return r.repo.Head()
}

func (r *goGitRepository) OriginURL() (string, error) {
	remote, err := r.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", git.ErrRemoteNotFound
	}
	return urls[0], nil
}

// Extractor resolves Info for a directory.
type Extractor struct {
	opener Opener
}

// NewExtractor returns an Extractor. A nil opener uses DefaultOpener.
func NewExtractor(opener Opener) *Extractor {
	if opener == nil {
		opener = DefaultOpener{}
	}
	return &Extractor{opener: opener}
}

// Extract returns metadata for the repository containing dir, or nil when
// dir is not inside a repository. It never fails: unreadable fields are nil.
func (e *Extractor) Extract(dir string) *Info {
	repo, err := e.opener.Open(dir)
	if err != nil {
		return nil
	}

	info := &Info{}
	head, err := repo.Head()
	if err == nil {
		if head.Name().IsBranch() {
			info.Branch = ptr(head.Name().Short())
		}
		if hash := head.Hash().String(); len(hash) >= shortHashLen {
			info.Commit = ptr(hash[:shortHashLen])
		}
	} else if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Unborn branch: HEAD names a branch with no commits yet.
		info.Branch = unbornBranch(repo)
	}

	if url, err := repo.OriginURL(); err == nil && url != "" {
		info.Repo = ptr(url)
	}
	return info
}

func unbornBranch(repo Repository) *string {
	r, ok := repo.(*goGitRepository)
	if !ok {
		return nil
	}
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return nil
	}
	return ptr(ref.Target().Short())
}

func ptr(s string) *string {
	return &s
}
