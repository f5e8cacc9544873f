package ast

import (
	"path/filepath"
	"strings"
)

// Language identifies the source dialect of a project file.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangCSS        Language = "css"
	LangSCSS       Language = "scss"
	LangJSON       Language = "json"
	LangHTML       Language = "html"
	LangUnknown    Language = "unknown"
)

var extensionMap = map[string]Language{
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".css":  LangCSS,
	".scss": LangSCSS,
	".json": LangJSON,
	".html": LangHTML,
}

// Detect returns the best-effort language for a path.
func Detect(path string) Language {
	if lang, ok := extensionMap[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// IsScript reports whether the language is one the outline extractor
// understands.
func (l Language) IsScript() bool {
	return l == LangJavaScript || l == LangTypeScript
}
