package source

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// WXRSource serves posts out of a WordPress eXtended RSS export file. The
// document is parsed once at construction, content markup is parsed into
// block trees lazily per post and cached.
type WXRSource struct {
	mu    sync.Mutex
	posts map[int]*wxrItem
	lang  language.Tag
	log   *zap.Logger
}

type wxrItem struct {
	id      int
	title   string
	content string
	post    *Post // set after the first PostByID
}

// NewWXRSource loads and indexes a WXR export. Items that are not published
// posts or pages (attachments, revisions, drafts) are skipped.
func NewWXRSource(path string, log *zap.Logger) (*WXRSource, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("source")

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: unable to read export %s: %v", ErrFetch, path, err)
	}

	channel := doc.FindElement("//channel")
	if channel == nil {
		return nil, fmt.Errorf("%w: export %s has no channel", ErrFetch, path)
	}

	s := &WXRSource{
		posts: make(map[int]*wxrItem),
		lang:  language.Und,
		log:   log,
	}

	if el := channel.SelectElement("language"); el != nil {
		if tag, err := language.Parse(el.Text()); err == nil {
			s.lang = tag
		} else {
			log.Debug("Unparsable channel language", zap.String("value", el.Text()), zap.Error(err))
		}
	}

	for _, item := range channel.SelectElements("item") {
		if !publishedContent(item) {
			continue
		}
		idEl := item.SelectElement("wp:post_id")
		if idEl == nil {
			continue
		}
		id, err := strconv.Atoi(idEl.Text())
		if err != nil {
			log.Debug("Skipping item with bad post id", zap.String("value", idEl.Text()))
			continue
		}
		it := &wxrItem{id: id}
		if el := item.SelectElement("title"); el != nil {
			it.title = el.Text()
		}
		if el := item.SelectElement("content:encoded"); el != nil {
			it.content = el.Text()
		}
		s.posts[id] = it
	}

	log.Debug("Indexed export",
		zap.String("path", path),
		zap.Int("posts", len(s.posts)),
		zap.Stringer("language", s.lang))
	return s, nil
}

// Language is the channel language of the export, language.Und when absent.
func (s *WXRSource) Language() language.Tag {
	return s.lang
}

func (s *WXRSource) PostByID(ctx context.Context, id int) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", ErrPostNotFound, id)
	}
	if it.post != nil {
		return it.post, nil
	}

	blocks, err := ParseSerialized(it.content, s.log)
	if err != nil {
		return nil, fmt.Errorf("%w: post %d: %v", ErrFetch, id, err)
	}
	it.post = &Post{ID: it.id, Title: it.title, Blocks: blocks}
	return it.post, nil
}

func (s *WXRSource) PostIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// publishedContent keeps only items that carry renderable block markup.
func publishedContent(item *etree.Element) bool {
	typ := ""
	if el := item.SelectElement("wp:post_type"); el != nil {
		typ = el.Text()
	}
	if typ != "post" && typ != "page" {
		return false
	}
	if el := item.SelectElement("wp:status"); el != nil && el.Text() != "publish" {
		return false
	}
	return true
}
