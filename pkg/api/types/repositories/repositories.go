// Package repositories holds representations of the model repository's
// repository (model store) resources.
package repositories

import (
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

// Repository is a model store inside the model repository service.
type Repository struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Default     bool             `json:"defaultRepository,omitempty"`
	FolderID    string           `json:"folderId,omitempty"`
	Links       []resources.Link `json:"links,omitempty"`
}

func (r *Repository) Equal(o *Repository) bool {
	if r == nil || o == nil {
		return r == nil && o == nil
	}
	return r.ID == o.ID &&
		r.Name == o.Name &&
		r.Description == o.Description &&
		r.Default == o.Default &&
		r.FolderID == o.FolderID
}
