// Package library implements the collections and likes model behind the
// Wiboard frontend: invariant-preserving operations over a user's named image
// collections and flat likes list, plus the view snapshot that binds them to a
// persisted state store.
//
// Within one collection, image URLs are unique. Collection names are unique
// within the set. A collection never exists empty after a removal: removing
// the last image prunes the collection itself.
package library

import "wiboard-complete/core"

// SaveToCollection returns cols with ref appended to the collection called
// name, creating the collection if it does not exist yet. Saving a URL that
// the collection already holds is a no-op, and the entry already present
// keeps its title (first write wins). Idempotent for a given (name, url)
// pair. The input slice is not modified.
func SaveToCollection(cols []core.Collection, name string, ref core.ImageRef) []core.Collection {
	if ref.Title == "" {
		ref.Title = "Untitled"
	}

	for i, c := range cols {
		if c.Name != name {
			continue
		}
		for _, img := range c.Images {
			if img.URL == ref.URL {
				return cols
			}
		}
		out := make([]core.Collection, len(cols))
		copy(out, cols)
		images := make([]core.ImageRef, len(c.Images), len(c.Images)+1)
		copy(images, c.Images)
		out[i].Images = append(images, ref)
		return out
	}

	out := make([]core.Collection, len(cols), len(cols)+1)
	copy(out, cols)
	return append(out, core.Collection{Name: name, Images: []core.ImageRef{ref}})
}

// RemoveFromAllCollections returns cols with every image matching url
// filtered out of every collection. Collections emptied by the removal are
// dropped. Afterwards ContainsURL(result, url) is false. A url present in no
// collection returns cols unchanged.
func RemoveFromAllCollections(cols []core.Collection, url string) []core.Collection {
	if !ContainsURL(cols, url) {
		return cols
	}

	out := make([]core.Collection, 0, len(cols))
	for _, c := range cols {
		images := make([]core.ImageRef, 0, len(c.Images))
		for _, img := range c.Images {
			if img.URL != url {
				images = append(images, img)
			}
		}
		if len(images) == 0 {
			continue
		}
		out = append(out, core.Collection{Name: c.Name, Images: images})
	}
	return out
}

// RemoveImageFromCollection removes only the matching image from the named
// collection, pruning the collection if that was its last image. Unknown
// collection or url is a no-op.
func RemoveImageFromCollection(cols []core.Collection, name, url string) []core.Collection {
	for i, c := range cols {
		if c.Name != name {
			continue
		}
		found := false
		images := make([]core.ImageRef, 0, len(c.Images))
		for _, img := range c.Images {
			if img.URL == url {
				found = true
				continue
			}
			images = append(images, img)
		}
		if !found {
			return cols
		}
		if len(images) == 0 {
			return append(cols[:i:i], cols[i+1:]...)
		}
		out := make([]core.Collection, len(cols))
		copy(out, cols)
		out[i].Images = images
		return out
	}
	return cols
}

// DeleteCollection removes the collection with the given name entirely,
// whatever it contains. Unknown name is a no-op.
func DeleteCollection(cols []core.Collection, name string) []core.Collection {
	for i, c := range cols {
		if c.Name == name {
			return append(cols[:i:i], cols[i+1:]...)
		}
	}
	return cols
}

// FindByName returns the collection with the given name, if present.
func FindByName(cols []core.Collection, name string) (core.Collection, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return core.Collection{}, false
}

// ContainsURL reports whether any collection holds an image with the given
// url. This is the saved-state resolver behind the Save/Saved toggle.
func ContainsURL(cols []core.Collection, url string) bool {
	for _, c := range cols {
		for _, img := range c.Images {
			if img.URL == url {
				return true
			}
		}
	}
	return false
}
