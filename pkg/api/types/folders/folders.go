// Package folders holds representations of the folders service.
package folders

import (
	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

// Folder is one folder of the platform's content tree.
type Folder struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	ParentURI   string           `json:"parentFolderUri,omitempty"`
	CreatedAt   *rfctime.RFC3339 `json:"creationTimeStamp,omitempty"`
	Links       []resources.Link `json:"links,omitempty"`
}

func (f *Folder) Equal(o *Folder) bool {
	if f == nil || o == nil {
		return f == nil && o == nil
	}
	return f.ID == o.ID &&
		f.Name == o.Name &&
		f.Description == o.Description &&
		f.ParentURI == o.ParentURI
}

// Member is one entry inside a folder.
type Member struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	ContentType string `json:"contentType,omitempty"`
}
