package http

import (
	"embed"
	"html/template"
	"time"

	"github.com/mrlokans/readinglog/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "2 Jan 2006, 15:04"

var templateFuncs = template.FuncMap{
	"duration": utils.FormatDuration,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format(dateLayout)
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format(dateLayout)
	},
}

// LoadTemplates parses the embedded page templates. Each page is addressed
// by its file name, e.g. "index.html".
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
