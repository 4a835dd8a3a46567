package sandbox

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelmill/modelmill/pkg/api/types/folders"
)

// newFolder places a folder without validation. Callers hold the lock
// (or run before the sandbox is shared, as seeding does).
func (s *Sandbox) newFolder(f folders.Folder) *folders.Folder {
	f.ID = uuid.NewString()
	f.CreatedAt = now()
	f.Links = selfLinks("/folders/folders/" + f.ID)
	s.folders[f.ID] = &f
	return &f
}

// CreateFolder makes a folder. A parent referenced by parentFolderUri
// must exist.
func (s *Sandbox) CreateFolder(f folders.Folder) (folders.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Name == "" {
		return folders.Folder{}, fmt.Errorf("folder name is required")
	}
	if f.ParentURI != "" {
		parentID := strings.TrimPrefix(f.ParentURI, "/folders/folders/")
		if _, ok := s.folders[parentID]; !ok {
			return folders.Folder{}, missing("parent folder", f.ParentURI)
		}
	}
	return *s.newFolder(f), nil
}

// Folder finds a folder by name or id. The "@myFolder" shortcut names
// the account's own folder, created on first use.
func (s *Sandbox) Folder(nameOrID string, user string) (folders.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nameOrID == "@myFolder" {
		return s.homeFolder(user), nil
	}

	if f, ok := s.folders[nameOrID]; ok {
		return *f, nil
	}
	for _, f := range s.folders {
		if f.Name == nameOrID {
			return *f, nil
		}
	}
	return folders.Folder{}, missing("folder", nameOrID)
}

func (s *Sandbox) homeFolder(user string) folders.Folder {
	if id, ok := s.homeFolders[user]; ok {
		return *s.folders[id]
	}
	home := s.newFolder(folders.Folder{Name: "My Folder"})
	s.homeFolders[user] = home.ID
	return *home
}

// DeleteFolder removes a folder. Folders with members stay.
func (s *Sandbox) DeleteFolder(nameOrID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.folders[nameOrID]
	if !ok {
		for _, f := range s.folders {
			if f.Name == nameOrID {
				target = f
				break
			}
		}
	}
	if target == nil {
		return missing("folder", nameOrID)
	}

	if len(s.childFolders(target.ID)) > 0 {
		return fmt.Errorf("%w: folder %q is not empty", ErrConflict, target.Name)
	}
	delete(s.folders, target.ID)
	return nil
}

// FolderMembers lists a folder's direct members.
func (s *Sandbox) FolderMembers(folderID string) ([]folders.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.folders[folderID]
	if !ok {
		return nil, missing("folder", folderID)
	}

	members := []folders.Member{}
	for _, child := range s.childFolders(parent.ID) {
		members = append(members, folders.Member{
			ID:          uuid.NewString(),
			Name:        child.Name,
			URI:         "/folders/folders/" + child.ID,
			ContentType: "folder",
		})
	}
	return members, nil
}

func (s *Sandbox) childFolders(parentID string) []*folders.Folder {
	parentURI := "/folders/folders/" + parentID

	children := []*folders.Folder{}
	for _, f := range s.folders {
		if f.ParentURI == parentURI {
			children = append(children, f)
		}
	}
	return children
}
