// Package resources holds the vocabulary shared by every Modelmill REST
// resource: hypermedia links and the standard collection envelope.
package resources

import (
	"github.com/modelmill/modelmill/pkg/utils"
)

// Link is a hypermedia link attached to a resource representation.
type Link struct {
	Method string `json:"method,omitempty"`
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	URI    string `json:"uri,omitempty"`
	Type   string `json:"type,omitempty"`
}

func (l *Link) Equal(o *Link) bool {
	if l == nil || o == nil {
		return l == nil && o == nil
	}
	return l.Method == o.Method &&
		l.Rel == o.Rel &&
		l.Href == o.Href &&
		l.URI == o.URI &&
		l.Type == o.Type
}

// FindLink scans links for the first one with the given relation.
func FindLink(links []Link, rel string) (Link, bool) {
	return utils.First(links, func(l Link) bool { return l.Rel == rel })
}

// SelfLink is FindLink(links, "self").
func SelfLink(links []Link) (Link, bool) {
	return FindLink(links, "self")
}

// List is the collection envelope every listing endpoint responds with.
type List[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList wraps items into a List with its Count set.
func NewList[T any](items []T) List[T] {
	return List[T]{Items: items, Count: len(items)}
}
