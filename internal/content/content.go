// Package content loads the markdown post and project library from disk.
// Documents are parsed once at startup; the site's content ships with the
// binary's deployment, so there is no reload path.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

const wordsPerMinute = 200

// Post is a rendered writing entry. HTML is sanitized and safe to serve
// as-is.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	ReadingTime string   `json:"readingTime"`
	HTML        string   `json:"content"`

	rawDate time.Time
}

// ProjectLinks holds the optional outbound links of a project.
type ProjectLinks struct {
	Live   string `json:"live,omitempty" yaml:"live"`
	GitHub string `json:"github,omitempty" yaml:"github"`
}

// Project is a rendered portfolio entry.
type Project struct {
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Role        string        `json:"role"`
	Period      string        `json:"period"`
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Tech        []string      `json:"tech"`
	Type        string        `json:"type"`
	Highlighted bool          `json:"highlighted"`
	Links       *ProjectLinks `json:"links,omitempty"`

	order int
}

type postFrontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Status      string   `yaml:"status"`
}

type projectFrontMatter struct {
	Title       string        `yaml:"title"`
	Role        string        `yaml:"role"`
	Period      string        `yaml:"period"`
	Summary     string        `yaml:"summary"`
	Tech        []string      `yaml:"tech"`
	Type        string        `yaml:"type"`
	Highlighted bool          `yaml:"highlighted"`
	Order       int           `yaml:"order"`
	Links       *ProjectLinks `yaml:"links"`
}

// Library holds the loaded content, posts newest first and projects in
// their declared order.
type Library struct {
	posts    []Post
	projects []Project
	bySlug   map[string]int
}

// Load reads dir/posts/*.md and dir/projects/*.md. Draft posts are
// excluded. A missing subdirectory yields an empty section, not an error.
func Load(dir string) (*Library, error) {
	posts, err := loadPosts(filepath.Join(dir, "posts"))
	if err != nil {
		return nil, err
	}
	projects, err := loadProjects(filepath.Join(dir, "projects"))
	if err != nil {
		return nil, err
	}

	lib := &Library{
		posts:    posts,
		projects: projects,
		bySlug:   make(map[string]int, len(posts)),
	}
	for i, p := range posts {
		lib.bySlug[p.Slug] = i
	}
	return lib, nil
}

// Posts returns all published posts, newest first.
func (l *Library) Posts() []Post {
	return l.posts
}

// PostBySlug returns the post with the given slug.
func (l *Library) PostBySlug(slug string) (*Post, bool) {
	i, ok := l.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &l.posts[i], true
}

// Adjacent returns the posts published after (prev) and before (next) the
// given one, following the newest-first ordering.
func (l *Library) Adjacent(slug string) (prev, next *Post) {
	i, ok := l.bySlug[slug]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		prev = &l.posts[i-1]
	}
	if i < len(l.posts)-1 {
		next = &l.posts[i+1]
	}
	return prev, next
}

// Projects returns all projects in display order.
func (l *Library) Projects() []Project {
	return l.projects
}

// PostSlugs returns the slugs of all published posts.
func (l *Library) PostSlugs() []string {
	return lo.Map(l.posts, func(p Post, _ int) string { return p.Slug })
}

func loadPosts(dir string) ([]Post, error) {
	files, err := markdownFiles(dir)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(files))
	for _, path := range files {
		post, err := loadPost(path)
		if err != nil {
			return nil, fmt.Errorf("load post %s: %w", filepath.Base(path), err)
		}
		if post == nil {
			continue
		}
		posts = append(posts, *post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].rawDate.After(posts[j].rawDate)
	})
	return posts, nil
}

func loadPost(path string) (*Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta postFrontMatter
	body, err := splitFrontMatter(string(raw), &meta)
	if err != nil {
		return nil, err
	}
	if meta.Status == "draft" {
		return nil, nil
	}

	date, err := time.Parse("2006-01-02", meta.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", meta.Date, err)
	}

	html := renderMarkdown(body)
	return &Post{
		Slug:        slugFromPath(path),
		Title:       meta.Title,
		Date:        date.Format("Jan 2, 2006"),
		Description: meta.Description,
		Tags:        meta.Tags,
		ReadingTime: readingTime(html),
		HTML:        html,
		rawDate:     date,
	}, nil
}

func loadProjects(dir string) ([]Project, error) {
	files, err := markdownFiles(dir)
	if err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(files))
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var meta projectFrontMatter
		body, err := splitFrontMatter(string(raw), &meta)
		if err != nil {
			return nil, fmt.Errorf("load project %s: %w", filepath.Base(path), err)
		}

		project := Project{
			Slug:        slugFromPath(path),
			Title:       meta.Title,
			Role:        meta.Role,
			Period:      meta.Period,
			Summary:     meta.Summary,
			Tech:        meta.Tech,
			Type:        meta.Type,
			Highlighted: meta.Highlighted,
			Links:       meta.Links,
			order:       meta.Order,
		}
		if body = strings.TrimSpace(body); body != "" {
			project.Description = renderMarkdown(body)
		}
		projects = append(projects, project)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].order != projects[j].order {
			return projects[i].order < projects[j].order
		}
		return projects[i].Slug < projects[j].Slug
	})
	return projects, nil
}

func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func slugFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}

// readingTime estimates how long the rendered document takes to read at
// 200 words per minute, rounding up.
func readingTime(html string) string {
	plain := bluemonday.StrictPolicy().Sanitize(html)
	words := len(strings.Fields(plain))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
