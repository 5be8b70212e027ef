// Package snapshot versions the schematic netlist in a local git
// repository. Each save commits the current netlist XML, so destructive
// backend actions leave a recoverable trail without any remote setup.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"

	"kicadmcp/pkg/fileops"
)

const (
	// netlistFile is the single tracked file inside the snapshot repo.
	netlistFile = "netlist.xml"

	committerName  = "kicadmcp"
	committerEmail = "kicadmcp@localhost"
)

// Snapshot describes one saved netlist state.
type Snapshot struct {
	Hash  string
	Label string
	When  time.Time
}

// Store is a git-backed netlist archive.
type Store struct {
	dir  string
	repo *git.Repository
}

// DefaultPath returns the per-user snapshot repository location.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "kicadmcp", "snapshots")
}

// Open opens the snapshot repository at dir, initializing a fresh one on
// first use.
func Open(dir string) (*Store, error) {
	if err := fileops.EnsureDirectoryExists(dir); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot repository: %w", err)
	}

	return &Store{dir: dir, repo: repo}, nil
}

// Save records the netlist under the given label and returns the commit
// hash. Saving an unchanged netlist creates no new commit and returns the
// previous hash instead.
func (s *Store) Save(label, xml string) (string, error) {
	if strings.TrimSpace(label) == "" {
		label = "unlabeled"
	}

	path := filepath.Join(s.dir, netlistFile)
	if err := fileops.AtomicWriteFile(path, []byte(xml), 0644); err != nil {
		return "", fmt.Errorf("writing netlist file: %w", err)
	}

	wt, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening snapshot worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("reading snapshot status: %w", err)
	}
	if status.IsClean() {
		head, err := s.repo.Head()
		if err != nil {
			return "", fmt.Errorf("resolving snapshot head: %w", err)
		}
		return head.Hash().String(), nil
	}

	if _, err := wt.Add(netlistFile); err != nil {
		return "", fmt.Errorf("staging netlist file: %w", err)
	}

	hash, err := wt.Commit("snapshot: "+label, &git.CommitOptions{
		Author: &object.Signature{
			Name:  committerName,
			Email: committerEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("committing snapshot: %w", err)
	}

	return hash.String(), nil
}

// List returns saved snapshots newest-first. A positive limit caps the
// result; zero or negative returns everything.
func (s *Store) List(limit int) ([]Snapshot, error) {
	head, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving snapshot head: %w", err)
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot log: %w", err)
	}
	defer iter.Close()

	var out []Snapshot
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(out) >= limit {
			return storer.ErrStop
		}
		out = append(out, Snapshot{
			Hash:  c.Hash.String(),
			Label: strings.TrimPrefix(strings.TrimSpace(c.Message), "snapshot: "),
			When:  c.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking snapshot log: %w", err)
	}

	return out, nil
}

// Show returns the netlist content recorded at the given commit. Hash
// prefixes are accepted.
func (s *Store) Show(hash string) (string, error) {
	h, err := s.repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return "", fmt.Errorf("resolving snapshot %q: %w", hash, err)
	}

	commit, err := s.repo.CommitObject(*h)
	if err != nil {
		return "", fmt.Errorf("reading snapshot %q: %w", hash, err)
	}

	file, err := commit.File(netlistFile)
	if err != nil {
		return "", fmt.Errorf("snapshot %q has no netlist: %w", hash, err)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reading snapshot contents: %w", err)
	}
	return content, nil
}
