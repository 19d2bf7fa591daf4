package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/synthmed/radgen/internal/log"
)

//go:embed assets/report.html
var reportTmpl string

// Item is one stored artifact row in the batch report.
type Item struct {
	Image   string
	Prompt  string
	Angle   string
	Seed    int64
	Verdict string
}

type Params struct {
	Title string
	Items []Item
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (t *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	t.once.Do(func() {
		t.tmpl = template.Must(template.New("report").Parse(reportTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("report")
	log.Debug("rendering batch report", "items", len(params.Items))

	var data bytes.Buffer
	if err := t.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
