package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/folders"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils"
)

// Folders is the client of the folders service.
type Folders interface {
	// CreateFolder makes a folder. With WithParentFolder, the parent
	// is resolved by name or id first; a missing parent is an error
	// wrapping ErrNotFound.
	CreateFolder(ctx context.Context, name string, opts ...FolderOption) (*folders.Folder, error)

	// GetFolder finds a folder by name, id, or the "@myFolder"
	// shortcut for the account's own folder. Absence wraps ErrNotFound.
	GetFolder(ctx context.Context, nameOrID string) (*folders.Folder, error)

	// DeleteFolder removes a folder.
	DeleteFolder(ctx context.Context, nameOrID string) error

	// ListMembers lists a folder's direct members.
	ListMembers(ctx context.Context, folderID string) ([]folders.Member, error)
}

type folderConfig struct {
	description string
	parent      string
}

// FolderOption adjusts folder creation.
type FolderOption func(*folderConfig) *folderConfig

// WithFolderDescription sets the folder's description.
func WithFolderDescription(description string) FolderOption {
	return func(c *folderConfig) *folderConfig {
		c.description = description
		return c
	}
}

// WithParentFolder places the folder under a parent, named by name or id.
func WithParentFolder(nameOrID string) FolderOption {
	return func(c *folderConfig) *folderConfig {
		c.parent = nameOrID
		return c
	}
}

type foldersClient struct {
	session *Session
}

// NewFolders builds the folders client on a session.
func NewFolders(s *Session) Folders {
	return &foldersClient{session: s}
}

func (c *foldersClient) CreateFolder(
	ctx context.Context, name string, opts ...FolderOption,
) (*folders.Folder, error) {
	conf := utils.ApplyAll(&folderConfig{}, opts...)

	parentURI := ""
	if conf.parent != "" {
		parent, err := c.GetFolder(ctx, conf.parent)
		if err != nil {
			return nil, fmt.Errorf("parent folder %q: %w", conf.parent, err)
		}
		if self, ok := resources.SelfLink(parent.Links); ok {
			parentURI = self.URI
		} else {
			parentURI = "/folders/folders/" + parent.ID
		}
	}

	body, err := marshalJSONBody(folders.Folder{
		Name:        name,
		Description: conf.description,
		ParentURI:   parentURI,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("folders/folders"), body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	created := folders.Folder{}
	if err := unmarshalJsonResponse(resp, &created, MessageFor{
		Status4xx: "cannot create folder",
		Status5xx: "folders service failed",
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *foldersClient) GetFolder(ctx context.Context, nameOrID string) (*folders.Folder, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("folders/folders", nameOrID), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: folder %q", ErrNotFound, nameOrID)
	}

	folder := folders.Folder{}
	if err := unmarshalJsonResponse(resp, &folder, MessageFor{
		Status4xx: "cannot read folder",
		Status5xx: "folders service failed",
	}); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *foldersClient) DeleteFolder(ctx context.Context, nameOrID string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.session.URL("folders/folders", nameOrID), nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: folder %q", ErrNotFound, nameOrID)
	}

	return unmarshalResponseDiscardingPayload(resp, MessageFor{
		Status4xx: "cannot delete folder",
		Status5xx: "folders service failed",
	})
}

func (c *foldersClient) ListMembers(ctx context.Context, folderID string) ([]folders.Member, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("folders/folders", folderID, "members"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: folder %q", ErrNotFound, folderID)
	}

	members := resources.List[folders.Member]{}
	if err := unmarshalJsonResponse(resp, &members, MessageFor{
		Status4xx: "cannot list folder members",
		Status5xx: "folders service failed",
	}); err != nil {
		return nil, err
	}
	return members.Items, nil
}
