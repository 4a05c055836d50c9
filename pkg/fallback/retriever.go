package fallback

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snippet is one retrieved knowledge fragment used to ground the fallback.
type Snippet struct {
	Content   string
	Path      string
	Relevance float64
}

// Retriever finds knowledge snippets relevant to an utterance.
type Retriever interface {
	Retrieve(ctx context.Context, utterance string) ([]Snippet, error)
}

// FilesystemRetriever searches a local knowledge directory for snippets.
type FilesystemRetriever struct {
	basePath    string
	extensions  []string
	maxFiles    int
	maxSize     int64
	maxSnippets int
}

// NewFilesystemRetriever creates a retriever over a knowledge directory.
func NewFilesystemRetriever(basePath string) *FilesystemRetriever {
	return &FilesystemRetriever{
		basePath:    basePath,
		extensions:  []string{".md", ".txt"},
		maxFiles:    100,
		maxSize:     256 * 1024,
		maxSnippets: 3,
	}
}

// Retrieve returns the most relevant snippets for the utterance, best first.
func (r *FilesystemRetriever) Retrieve(ctx context.Context, utterance string) ([]Snippet, error) {
	keywords := extractKeywords(strings.ToLower(utterance))

	var snippets []Snippet
	fileCount := 0
	err := filepath.WalkDir(r.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if fileCount >= r.maxFiles {
			return filepath.SkipAll
		}
		if !r.hasExtension(filepath.Ext(path)) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > r.maxSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		fileCount++

		relevance := calculateRelevance(strings.ToLower(string(content)), keywords)
		if relevance > 0.1 {
			relPath, _ := filepath.Rel(r.basePath, path)
			snippets = append(snippets, Snippet{
				Content:   string(content),
				Path:      relPath,
				Relevance: relevance,
			})
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return nil, err
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Relevance > snippets[j].Relevance
	})
	if len(snippets) > r.maxSnippets {
		snippets = snippets[:r.maxSnippets]
	}
	return snippets, nil
}

func (r *FilesystemRetriever) hasExtension(ext string) bool {
	for _, e := range r.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// extractKeywords splits an utterance into searchable keywords.
func extractKeywords(query string) []string {
	words := strings.Fields(query)
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "is": true, "are": true,
		"what": true, "how": true, "where": true, "when": true, "why": true,
		"to": true, "of": true, "in": true, "for": true, "on": true,
		"and": true, "or": true, "but": true, "with": true,
	}

	var keywords []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if len(w) > 2 && !stopWords[w] {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// calculateRelevance scores how relevant content is to keywords.
func calculateRelevance(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			matches++
		}
	}

	return float64(matches) / float64(len(keywords))
}
