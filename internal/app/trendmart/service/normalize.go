package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// normalizeCategoryName приводит имя категории внешнего источника
// к каноническому отображаемому виду ("men's clothing" -> "Men's Clothing")
func normalizeCategoryName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}

// slugify строит канонический slug категории:
// нижний регистр, пробелы в дефисы, апострофы убираются
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
