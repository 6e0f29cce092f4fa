package release

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

const (
	audioReleaseTag  = "audio"
	audioReleaseName = "Podcast Audio Files"
)

// GitHubPublisher hosts audio files as assets of a single GitHub
// release tagged "audio".
type GitHubPublisher struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubPublisher builds a publisher for "owner/name".
func NewGitHubPublisher(token, repo string) (*GitHubPublisher, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must be \"owner/name\", got %q", repo)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	return &GitHubPublisher{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   name,
	}, nil
}

// Upload attaches the file to the audio release, replacing any existing
// asset with the same name so re-publishing a paper is idempotent.
func (p *GitHubPublisher) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	release, err := p.ensureRelease(ctx)
	if err != nil {
		return "", err
	}

	filename := filepath.Base(path)
	if err := p.deleteExistingAsset(ctx, release.GetID(), filename); err != nil {
		return "", err
	}

	log.Printf("Uploading %s to GitHub release...", filename)
	asset, _, err := p.client.Repositories.UploadReleaseAsset(ctx, p.owner, p.repo, release.GetID(), &github.UploadOptions{
		Name:      filename,
		MediaType: "audio/mpeg",
	}, f)
	if err != nil {
		return "", fmt.Errorf("upload asset %s: %w", filename, err)
	}

	return asset.GetBrowserDownloadURL(), nil
}

// AssetURL returns the stable release download URL for a filename.
func (p *GitHubPublisher) AssetURL(filename string) string {
	return fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s", p.owner, p.repo, audioReleaseTag, filename)
}

// ListAssets returns the .mp3 assets of the audio release keyed by
// basename without extension.
func (p *GitHubPublisher) ListAssets(ctx context.Context) (map[string]Asset, error) {
	release, _, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, audioReleaseTag)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return map[string]Asset{}, nil
		}
		return nil, fmt.Errorf("get release %s: %w", audioReleaseTag, err)
	}

	assets := make(map[string]Asset)
	opts := &github.ListOptions{PerPage: 100}
	for {
		page, resp, err := p.client.Repositories.ListReleaseAssets(ctx, p.owner, p.repo, release.GetID(), opts)
		if err != nil {
			return nil, fmt.Errorf("list release assets: %w", err)
		}
		for _, a := range page {
			name := a.GetName()
			if !strings.HasSuffix(name, ".mp3") {
				continue
			}
			assets[strings.TrimSuffix(name, ".mp3")] = Asset{
				Name: name,
				Size: int64(a.GetSize()),
				URL:  a.GetBrowserDownloadURL(),
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return assets, nil
}

// ensureRelease fetches the audio release, creating it on first use.
func (p *GitHubPublisher) ensureRelease(ctx context.Context) (*github.RepositoryRelease, error) {
	release, _, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, audioReleaseTag)
	if err == nil {
		return release, nil
	}

	release, _, err = p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &github.RepositoryRelease{
		TagName:    github.String(audioReleaseTag),
		Name:       github.String(audioReleaseName),
		Body:       github.String("Audio files for podcast episodes"),
		Draft:      github.Bool(false),
		Prerelease: github.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("create release %s: %w", audioReleaseTag, err)
	}

	log.Printf("Created new release: %s", audioReleaseTag)
	return release, nil
}

func (p *GitHubPublisher) deleteExistingAsset(ctx context.Context, releaseID int64, filename string) error {
	opts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := p.client.Repositories.ListReleaseAssets(ctx, p.owner, p.repo, releaseID, opts)
		if err != nil {
			return fmt.Errorf("list release assets: %w", err)
		}
		for _, a := range assets {
			if a.GetName() == filename {
				log.Printf("Asset %s already exists, deleting old version...", filename)
				if _, err := p.client.Repositories.DeleteReleaseAsset(ctx, p.owner, p.repo, a.GetID()); err != nil {
					return fmt.Errorf("delete asset %s: %w", filename, err)
				}
				return nil
			}
		}
		if resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}
