// Package auditlog renders audit messages with inline entity references of
// the form <type:id:label> and extracts them back out of stored messages.
package auditlog

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "makerspace/pkg/errors"
)

// ErrorMarker is the textual convention that classifies a message as an error entry.
const ErrorMarker = "<error:"

var (
	placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)
	referencePattern   = regexp.MustCompile(`<(\w+):(\d+):([^<>]*)>`)
	labelReplacer      = strings.NewReplacer("<", "(", ">", ")")
)

// Entity is one value substituted into a template.
type Entity struct {
	ID    uint64
	Label string
}

// Ref is an entity reference found in a rendered message.
type Ref struct {
	Type  string `json:"type"`
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

// Render substitutes the placeholders of template left to right, one entity per
// placeholder. The placeholder name becomes the reference type, so a template
// like "{user} banned {user}" pairs the first entity with the first token and
// the second with the second. A count mismatch is rejected.
func Render(template string, entities ...Entity) (string, error) {
	tokens := placeholderPattern.FindAllStringSubmatchIndex(template, -1)
	if len(tokens) != len(entities) {
		return "", apperrors.NewInvalidInputError(
			"audit template has %d placeholders but %d entities were supplied", len(tokens), len(entities))
	}

	var b strings.Builder
	last := 0
	for i, token := range tokens {
		b.WriteString(template[last:token[0]])
		entityType := template[token[2]:token[3]]
		b.WriteString(Reference(entityType, entities[i]))
		last = token[1]
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// Reference formats a single <type:id:label> token. Angle brackets in labels
// are replaced so the reference stays parseable.
func Reference(entityType string, entity Entity) string {
	return "<" + entityType + ":" + strconv.FormatUint(entity.ID, 10) + ":" + labelReplacer.Replace(entity.Label) + ">"
}

// ParseRefs returns every entity reference in message in order of appearance.
func ParseRefs(message string) []Ref {
	matches := referencePattern.FindAllStringSubmatch(message, -1)
	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		refs = append(refs, Ref{Type: m[1], ID: id, Label: m[3]})
	}
	return refs
}

// IsError reports whether the message carries the error marker.
func IsError(message string) bool {
	return strings.Contains(strings.ToLower(message), ErrorMarker)
}
