package template

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	adferrors "github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/httputil"
)

const httpTimeout = 10 * time.Second

// Loader fetches template markup by name.
type Loader interface {
	// List returns the available template names in display order.
	List(ctx context.Context) ([]string, error)

	// Load fetches and parses one template.
	Load(ctx context.Context, name string) (*Template, error)
}

// ===== Filesystem loader =====

// FSLoader serves templates from a directory tree. Any *.html file at
// the root of the FS is a template; names are listed in natural order
// so template10 sorts after template2.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader creates a loader over the given filesystem.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// List returns template names (without the .html extension) in natural
// sort order.
func (l *FSLoader) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".html"))
	}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })
	return names, nil
}

// Load reads and parses the named template.
func (l *FSLoader) Load(ctx context.Context, name string) (*Template, error) {
	if err := adferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}
	f, err := l.fsys.Open(path.Base(name) + ".html")
	if err != nil {
		return nil, adferrors.Wrap(adferrors.ErrCodeTemplateNotFound, err, "template %q not found", name)
	}
	defer f.Close()
	tpl, err := Parse(name, f)
	if err != nil {
		return nil, adferrors.Wrap(adferrors.ErrCodeInvalidTemplate, err, "template %q failed to parse", name)
	}
	return tpl, nil
}

// naturalLess orders strings so embedded integers compare numerically:
// template2 < template10.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ad, an := splitLeadingDigits(a)
		bd, bn := splitLeadingDigits(b)
		if ad != "" && bd != "" {
			av, bv := trimZeros(ad), trimZeros(bd)
			if av != bv {
				if len(av) != len(bv) {
					return len(av) < len(bv)
				}
				return av < bv
			}
			a, b = an, bn
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return a == "" && b != ""
}

func splitLeadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

// ===== HTTP loader =====

// HTTPLoader fetches templates from a base URL, the way the hosted
// editor serves them. It retries transient failures and maps 404s to
// template-not-found.
type HTTPLoader struct {
	base   string
	client *http.Client
	names  []string
}

// NewHTTPLoader creates a loader rooted at base. The names slice fixes
// the advertised template list; remote filesystems cannot be listed.
func NewHTTPLoader(base string, names []string) *HTTPLoader {
	return &HTTPLoader{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: httpTimeout},
		names:  names,
	}
}

// List returns the configured template names.
func (l *HTTPLoader) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), l.names...), nil
}

// Load fetches and parses the named template.
func (l *HTTPLoader) Load(ctx context.Context, name string) (*Template, error) {
	if err := adferrors.ValidateTemplateName(name); err != nil {
		return nil, err
	}

	url := l.base + "/" + name + ".html"
	var markup string
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return adferrors.New(adferrors.ErrCodeTemplateNotFound, "template %q not found", name)
		case resp.StatusCode >= 500:
			return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
		default:
			return adferrors.New(adferrors.ErrCodeNetwork, "fetching template %q: status %d", name, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		markup = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tpl, err := ParseString(name, markup)
	if err != nil {
		return nil, adferrors.Wrap(adferrors.ErrCodeInvalidTemplate, err, "template %q failed to parse", name)
	}
	return tpl, nil
}
