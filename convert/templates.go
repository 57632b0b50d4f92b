package convert

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"wbc/source"
)

// Values holds the variables available to the output name template.
type Values struct {
	Context string
	PostID  int
	Title   string
	Slug    string
}

func expandTemplate(name, field string, post *source.Post) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: name,
		PostID:  post.ID,
		Title:   post.Title,
		Slug:    slug.Make(post.Title),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
