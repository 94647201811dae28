package assets

import (
	"embed"
	"path"
)

//go:embed all:page_scripts
var pageScriptsFS embed.FS

const (
	pageScriptDir = "page_scripts"
	PageScript    = "page.js"
)

func GetPageScriptContent(filename string) ([]byte, error) {
	return pageScriptsFS.ReadFile(path.Join(pageScriptDir, filename))
}

// MustPageScript returns the DOM request handler evaluated for every field, element and click.
func MustPageScript() string {
	b, err := GetPageScriptContent(PageScript)
	if err != nil {
		panic("Failed to read embedded page script: " + err.Error())
	}
	return string(b)
}
