package generator

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*.md.tmpl
var templatesFS embed.FS

var readmeTemplates *template.Template

func init() {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	readmeTemplates = template.Must(
		template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.md.tmpl"),
	)
}

// readmeData 模板需要的全部数据，各段落都已预先算好，空值表示省略该段
type readmeData struct {
	Name          string
	FullName      string
	Badges        string
	Description   string
	Features      []string
	TechRows      []techRow
	Prerequisites []string
	InstallLines  []string
	Tree          string
	Scripts       []scriptLine
	LicenseLine   string
	Text          Text
}

type techRow struct {
	Label string
	Value string
}

type scriptLine struct {
	Command     string
	Description string
}

// renderTemplate 模板是内嵌的并在测试中覆盖，执行失败属于编程错误
func renderTemplate(name string, data any) string {
	var buf bytes.Buffer
	if err := readmeTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		panic("generator: failed to render template " + name + ": " + err.Error())
	}
	return buf.String()
}
